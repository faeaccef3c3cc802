package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/hybridrec/config"
	_ "github.com/rushteam/hybridrec/config/builders"
	"github.com/rushteam/hybridrec/core"
	"github.com/rushteam/hybridrec/dataset"
	"github.com/rushteam/hybridrec/pkg/log"
	"github.com/rushteam/hybridrec/recall"
	"github.com/rushteam/hybridrec/recommend"
	"github.com/rushteam/hybridrec/store"
)

var rootCommand = &cobra.Command{
	Use:   "hybridrec",
	Short: "Hybrid product recommender over a ratings catalog.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		if debug {
			return log.SetLogger(true)
		}
		log.CloseLogger()
		return nil
	},
	SilenceUsage: true,
}

var topRatedCommand = &cobra.Command{
	Use:   "top-rated",
	Short: "List the items with the highest average rating.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, err := openEngine(ctx, cmd)
		if err != nil {
			return err
		}
		n, _ := cmd.Flags().GetInt("top-n")
		rated, err := engine.TopRated(ctx, n)
		if err != nil {
			return err
		}
		return renderRated(cmd.OutOrStdout(), rated)
	},
}

var contentCommand = &cobra.Command{
	Use:   "content",
	Short: "Recommend items whose tags are similar to --item.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, err := openEngine(ctx, cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("item")
		n, _ := cmd.Flags().GetInt("top-n")
		res, err := engine.ContentRecommend(ctx, name, n)
		if err != nil {
			return err
		}
		return renderResult(cmd.OutOrStdout(), res)
	},
}

var collaborativeCommand = &cobra.Command{
	Use:   "collaborative",
	Short: "Recommend items rated by users similar to --user.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, err := openEngine(ctx, cmd)
		if err != nil {
			return err
		}
		user, _ := cmd.Flags().GetInt64("user")
		n, _ := cmd.Flags().GetInt("top-n")
		res, err := engine.CollaborativeRecommend(ctx, user, n)
		if err != nil {
			return err
		}
		return renderResult(cmd.OutOrStdout(), res)
	},
}

var hybridCommand = &cobra.Command{
	Use:   "hybrid",
	Short: "Merge content and collaborative recommendations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine, err := openEngine(ctx, cmd)
		if err != nil {
			return err
		}
		user, _ := cmd.Flags().GetInt64("user")
		name, _ := cmd.Flags().GetString("item")
		n, _ := cmd.Flags().GetInt("top-n")
		res, err := engine.HybridRecommend(ctx, user, name, n)
		if err != nil {
			return err
		}
		if res.Degraded {
			fmt.Fprintf(cmd.ErrOrStderr(), "user %d has no ratings, content recommendations only\n", user)
		}
		return renderResult(cmd.OutOrStdout(), res)
	},
}

var statsCommand = &cobra.Command{
	Use:   "stats",
	Short: "Print basic statistics of the catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ds, err := dataset.LoadCSV(cfg.Data.Catalog, dataset.Options{})
		if err != nil {
			return err
		}
		s := ds.Stats()
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Rows", "Users", "Items", "Ratings")
		if err := table.Append([]string{
			strconv.Itoa(s.Rows),
			strconv.Itoa(s.Users),
			strconv.Itoa(s.Items),
			strconv.Itoa(s.Ratings),
		}); err != nil {
			return err
		}
		return table.Render()
	},
}

func init() {
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.PersistentFlags().String("catalog", "", "catalog CSV path, overrides data.catalog")
	rootCommand.PersistentFlags().IntP("top-n", "n", 0, "number of items to return")

	contentCommand.Flags().String("item", "", "item name")
	_ = contentCommand.MarkFlagRequired("item")
	collaborativeCommand.Flags().Int64("user", 0, "user id")
	_ = collaborativeCommand.MarkFlagRequired("user")
	hybridCommand.Flags().Int64("user", 0, "user id")
	hybridCommand.Flags().String("item", "", "item name")
	_ = hybridCommand.MarkFlagRequired("user")
	_ = hybridCommand.MarkFlagRequired("item")

	rootCommand.AddCommand(topRatedCommand, contentCommand, collaborativeCommand, hybridCommand, statsCommand)
}

func loadConfig(cmd *cobra.Command) (*config.EngineConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.DefaultEngineConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadEngineConfig(path); err != nil {
			return nil, err
		}
	}
	if catalog, _ := cmd.Flags().GetString("catalog"); catalog != "" {
		cfg.Data.Catalog = catalog
	}
	if cfg.Data.Catalog == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"catalog path is required (--catalog or data.catalog)")
	}
	return cfg, nil
}

func openEngine(ctx context.Context, cmd *cobra.Command) (*recommend.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log.Logger().Info("load catalog", zap.String("path", cfg.Data.Catalog))
	ds, err := dataset.LoadCSV(cfg.Data.Catalog, dataset.Options{})
	if err != nil {
		return nil, err
	}
	kv, err := store.Open(ctx, store.Options{Type: cfg.Cache.Type, Addr: cfg.Cache.Addr, DB: cfg.Cache.DB})
	if err != nil {
		return nil, err
	}
	opts := []recommend.Option{recommend.WithConfig(cfg)}
	if kv != nil {
		opts = append(opts, recommend.WithStore(kv))
	}
	return recommend.New(ctx, ds.Items, ds.Observations(), opts...)
}

var itemHeader = []any{"Name", "ReviewCount", "Brand", "ImageURL", "Rating"}

func renderRated(w io.Writer, items []recall.RatedItem) error {
	table := tablewriter.NewWriter(w)
	table.Header(itemHeader...)
	for _, it := range items {
		if err := table.Append([]string{
			it.Name,
			strconv.Itoa(it.ReviewCount),
			it.Brand,
			it.ImageURL,
			strconv.FormatFloat(it.Rating, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderResult(w io.Writer, res *recommend.Result) error {
	if res.Miss {
		_, err := fmt.Fprintln(w, "item not found in catalog")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header(itemHeader...)
	for _, it := range res.Items {
		if err := table.Append([]string{
			it.Name,
			strconv.Itoa(it.ReviewCount),
			it.Brand,
			it.ImageURL,
			strconv.FormatFloat(it.Rating, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCommand.ExecuteContext(ctx); err != nil {
		log.Logger().Error("failed to execute", zap.Error(err))
		stop()
		os.Exit(1)
	}
}
