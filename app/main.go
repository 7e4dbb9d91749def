// Файл: main.go

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "maintenance",
		Short:         "Сервис заявок на обслуживание оборудования",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	addConfigFlag(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newServeCmd(),
		newInitDBCmd(),
		newSeedDBCmd(),
		newResetDBCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}

// addConfigFlag - путь к YAML-файлу. Переменные окружения всё равно важнее файла.
func addConfigFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&configFile, "config", "c", "", "путь к YAML-файлу конфигурации (иначе CONFIG_FILE)")
}
