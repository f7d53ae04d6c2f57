package cmd

import (
	"fmt"
	"log"

	"github.com/Mingzhe994/work-calendar-page/internal/config"
	"github.com/Mingzhe994/work-calendar-page/internal/container"
	"github.com/spf13/cobra"
)

// adminCmd represents the ensure-admin command
var adminCmd = &cobra.Command{
	Use:   "ensure-admin",
	Short: "Create the admin user if it does not exist",
	Long: `Create the configured admin user if it does not exist yet.
Credentials come from the config file or APP_AUTH_* environment variables.
Running this command against an existing admin account is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctr, err := container.NewContainer(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		// 容器初始化已经确保了管理员账号,这里只报告结果
		log.Printf("Admin user %q is present", cfg.Auth.AdminUsername)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)

	adminCmd.Flags().String("config", "", "Config file path (default: search in current directory or ./config)")
}
