package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/triplecheck/internal/logging"
	"github.com/ppiankov/triplecheck/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

// ErrInvalid signals that at least one document failed validation. The
// command has already printed its report; callers only set the exit code.
var ErrInvalid = errors.New("one or more documents are invalid")

var (
	cfgFile string
	noCache bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "triplecheck",
	Short: "triplecheck - validate annotation triples against an ontology",
	Long: `triplecheck validates RDF fact graphs produced for verse ranges of a
tragedy against the domain and range constraints of an OWL ontology, and
flags suspicious annotation patterns as warnings.

Syntax errors and constraint violations make a document invalid.
Heuristic findings never do.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "triplecheck %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.triplecheck/config.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Bool("log-json", false, "write logs as JSON")
	flags.String("schema", "", "ontology file path or URL")
	flags.String("productions-dir", "", "productions directory")
	flags.Int("workers", 0, "number of concurrent workers")
	flags.BoolVar(&noCache, "no-cache", false, "disable the result cache")
	flags.StringP("format", "f", "", "output format: console, json, markdown")

	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("output.log_json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("schema.path", flags.Lookup("schema"))
	_ = viper.BindPFlag("productions.dir", flags.Lookup("productions-dir"))
	_ = viper.BindPFlag("concurrency.workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("output.format", flags.Lookup("format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".triplecheck"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// TRIPLECHECK_LLM_MODEL overrides llm.model
	viper.SetEnvPrefix("TRIPLECHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// keys omitted from the defaults still need an env binding
	_ = viper.BindEnv("llm.api_key")
	_ = viper.BindEnv("llm.base_url")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}

// setDefaults registers every key of cfg with v, so that environment
// variables apply to keys absent from the config file
func setDefaults(v *viper.Viper, cfg model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal defaults")
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return errors.Wrap(err, "unmarshal defaults")
	}
	setTree(v, "", tree)
	return nil
}

func setTree(v *viper.Viper, prefix string, tree map[string]interface{}) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			setTree(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig merges defaults, the config file, environment and flags
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = model.DefaultConfig().Concurrency.Workers
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	return &cfg, nil
}

func newLogger(cfg *model.Config) *zap.SugaredLogger {
	return logging.New(logging.Options{
		JSON:    cfg.Output.LogJSON,
		Verbose: cfg.Output.Verbose,
	})
}
