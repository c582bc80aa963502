package cli

import (
	"github.com/go-i2p/go-ktaudit/lib/config"
	"github.com/go-i2p/go-ktaudit/lib/util/time/sntp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ntpClient is the NTP transport used by every command.
var ntpClient sntp.NTPClient = &sntp.DefaultNTPClient{}

// NewRootCommand builds the ktaudit command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ktaudit",
		Short:         "Audit the freshness of key transparency epochs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.InitConfig(); err != nil {
				return err
			}
			// Applied after InitConfig so a freshly written default file
			// does not record it.
			if offline, _ := cmd.Flags().GetBool("offline"); offline {
				viper.Set("ntp.disabled", true)
			}
			return config.Validate(config.CurrentConfig())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&config.CfgFile, "config", "", "config file (default $HOME/.go-ktaudit/config.yaml)")
	flags.Bool("offline", false, "use the system clock instead of NTP")

	root.AddCommand(
		newParseCommand(),
		newCheckCommand(),
		newAuditCommand(),
		newWatchCommand(),
		newNowCommand(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
