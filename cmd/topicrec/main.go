// Command topicrec 基于主题向量推荐相似电影。
//
//	topicrec -c topicrec.yaml                              交互式查询
//	topicrec -c topicrec.yaml query Get Out, The Ring, 3   单次查询
//	topicrec -c topicrec.yaml serve --addr :8080           启动 HTTP 服务
//	topicrec -c topicrec.yaml export model.db              转存产物（json / yaml / sqlite / store:<key>）
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rushteam/topicrec/config"
	_ "github.com/rushteam/topicrec/config/builders"
	"github.com/rushteam/topicrec/logging"
	"github.com/rushteam/topicrec/model"
	"github.com/rushteam/topicrec/server"
	"github.com/rushteam/topicrec/service"
	"github.com/rushteam/topicrec/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "topicrec:", err)
		os.Exit(1)
	}
}

// session 是一次命令执行期间加载好的配置与推荐器。
type session struct {
	cfg    *config.Config
	rec    *service.Recommender
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	var configPath string

	// open 加载配置并组装推荐器，fn 返回后释放存储连接。
	open := func(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
		logger := logging.With("topicrec")

		ctx := cmd.Context()
		rec, closer, err := service.FromConfig(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := closer(); err != nil {
				logger.Warn().Err(err).Msg("close stores")
			}
		}()
		return fn(ctx, &session{cfg: cfg, rec: rec, logger: logger})
	}

	root := &cobra.Command{
		Use:   "topicrec",
		Short: "Recommend movies with similar topic mixtures",
		Long: "Without a subcommand topicrec asks for a query on stdin, e.g.\n" +
			"  Get Out, The Ring, Step Brothers, 3\n" +
			"where the last entry is the number of recommendations.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return open(cmd, func(ctx context.Context, s *session) error {
				return prompt(ctx, s.rec, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（YAML），缺省时使用默认配置与环境变量")

	query := &cobra.Command{
		Use:   "query <movie>, [<movie>, ...] <count>",
		Short: "Run one query and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return open(cmd, func(ctx context.Context, s *session) error {
				return answer(ctx, s.rec, strings.Join(args, " "), cmd.OutOrStdout())
			})
		},
	}

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return open(cmd, func(ctx context.Context, s *session) error {
				if addr == "" {
					addr = s.cfg.Server.Addr
				}
				return server.New(s.rec, logging.With("server")).Run(ctx, addr)
			})
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "监听地址，覆盖配置中的 server.addr")

	exportCmd := &cobra.Command{
		Use:   "export <path|store:key>",
		Short: "Write the loaded artifact to another format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return open(cmd, func(ctx context.Context, s *session) error {
				return export(ctx, s.cfg, s.rec.Model(), args[0], s.logger)
			})
		},
	}

	root.AddCommand(query, serve, exportCmd)
	return root
}

func prompt(ctx context.Context, rec *service.Recommender, in io.Reader, out io.Writer) error {
	fmt.Fprint(out, "Search for any number of movies, separated by a commas.\n\n")
	fmt.Fprint(out, "The last entry should be the number of recommendations.\n\n")
	fmt.Fprint(out, "For example: Get Out, The Ring, Step Brothers, 3\n\n")
	fmt.Fprint(out, "Enter your movies here: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read input: %w", err)
	}
	return answer(ctx, rec, strings.TrimRight(line, "\r\n"), out)
}

func answer(ctx context.Context, rec *service.Recommender, text string, out io.Writer) error {
	res, err := rec.Recommend(ctx, text)
	if err != nil {
		return err
	}
	if res.IsNotice() {
		fmt.Fprintln(out, res.Notice)
		return nil
	}

	fmt.Fprint(out, "\n==========You searched for: \n\n")
	for _, title := range res.Resolved {
		fmt.Fprintf(out, "- %s\n\n", title)
	}
	fmt.Fprint(out, "==========You should watch: \n\n")
	for _, title := range res.Recommendations {
		fmt.Fprintf(out, "- %s\n\n", title)
	}
	return nil
}

func export(ctx context.Context, cfg *config.Config, m *model.TopicModel, target string, logger zerolog.Logger) error {
	dst := model.Source{Path: target}
	if key, ok := strings.CutPrefix(target, "store:"); ok {
		s, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer s.Close()
		dst = model.Source{Format: model.FormatStore, Store: s, Key: key}
	}
	if err := model.Save(ctx, dst, m); err != nil {
		return fmt.Errorf("export %s: %w", target, err)
	}
	logger.Info().Str("target", target).Int("items", m.ItemCount()).Msg("artifact exported")
	return nil
}
