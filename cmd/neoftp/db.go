package main

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"neoftp/internal/config"
	"neoftp/internal/core/reporter"
	"neoftp/internal/store"
)

func newDBCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "db",
		Short: "查看结果库",
		Long:  "列出结果库中记录的主机、凭据以及登录关系。密码按 output.audit_mode 脱敏显示。",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite 结果库路径 (覆盖 store 配置)")

	// withStore 打开结果库后执行 fn，结束时关闭
	withStore := func(cmd *cobra.Command, fn func(ctx context.Context, st store.Store, console *reporter.Console, cfg *config.Config) error) error {
		cfg := *appConfig
		storeCfg := *appConfig.Store
		cfg.Store = &storeCfg
		if cmd.Flags().Changed("db") {
			storeCfg.Driver = "sqlite"
			storeCfg.DSN = dbPath
		}

		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return fn(ctx, st, reporter.NewConsole(os.Stdout, debugEnabled()), &cfg)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "hosts",
		Short: "列出主机及 banner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, st store.Store, console *reporter.Console, _ *config.Config) error {
				hosts, err := st.ListHosts(ctx)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(hosts))
				for _, h := range hosts {
					rows = append(rows, []string{
						strconv.FormatUint(h.ID, 10),
						h.Host,
						strconv.Itoa(h.Port),
						h.Banner,
						h.UpdatedAt.Format("2006-01-02 15:04:05"),
					})
				}
				return console.PrintRows([]string{"ID", "Host", "Port", "Banner", "Updated"}, rows)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "creds",
		Short: "列出凭据及成功登录的主机数",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, st store.Store, console *reporter.Console, cfg *config.Config) error {
				creds, err := st.ListCredentials(ctx)
				if err != nil {
					return err
				}
				redact := reporter.NewAuditRedactor(cfg.Output.AuditMode, cfg.Output.RevealChars)
				rows := make([][]string, 0, len(creds))
				for _, c := range creds {
					rows = append(rows, []string{
						strconv.FormatUint(c.ID, 10),
						c.Username,
						redact(c.Password),
						strconv.Itoa(c.Logins),
					})
				}
				return console.PrintRows([]string{"ID", "Username", "Password", "Logins"}, rows)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "logins",
		Short: "列出凭据与主机的登录关系",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, st store.Store, console *reporter.Console, _ *config.Config) error {
				rels, err := st.ListLoginRelations(ctx)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(rels))
				for _, r := range rels {
					rows = append(rows, []string{
						strconv.FormatUint(r.ID, 10),
						strconv.FormatUint(r.CredentialID, 10),
						strconv.FormatUint(r.HostID, 10),
					})
				}
				return console.PrintRows([]string{"ID", "Credential", "Host"}, rows)
			})
		},
	})

	return cmd
}
