package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "bufrdecode",
		Short: "Decode WMO BUFR messages",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.bufrdecode.yaml)")
	root.PersistentFlags().String("table-dir", "./tables", "directory Table B/D CSV files are loaded from")
	root.PersistentFlags().Bool("verbose", false, "enable decoder logging and record each value's descriptor key alongside it")

	cobra.OnInitialize(func() { initConfig(root) })

	root.AddCommand(newDecodeCommand())
	return root
}

func initConfig(root *cobra.Command) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".bufrdecode")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("BUFRDECODE")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(root.PersistentFlags())
	_ = viper.ReadInConfig()
}
