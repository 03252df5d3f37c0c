package model

import "time"

// Config holds all triplecheck settings
type Config struct {
	Schema      SchemaConfig      `yaml:"schema" mapstructure:"schema"`
	Productions ProductionsConfig `yaml:"productions" mapstructure:"productions"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Vocabulary  VocabularyConfig  `yaml:"vocabulary" mapstructure:"vocabulary"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// SchemaConfig locates the ontology
type SchemaConfig struct {
	// Path is a file path or an http(s) URL
	Path string `yaml:"path" mapstructure:"path"`
}

// ProductionsConfig describes the verse-range directory layout
type ProductionsConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
}

// ConcurrencyConfig bounds batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls the validation result cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format       string `yaml:"format" mapstructure:"format"` // console, json, markdown
	ShowWarnings bool   `yaml:"show_warnings" mapstructure:"show_warnings"`
	Verbose      bool   `yaml:"verbose" mapstructure:"verbose"`
	LogJSON      bool   `yaml:"log_json" mapstructure:"log_json"`
}

// HTTPConfig applies to schema downloads
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// LLMConfig configures triple generation
type LLMConfig struct {
	Provider       string        `yaml:"provider" mapstructure:"provider"`
	Model          string        `yaml:"model" mapstructure:"model"`
	APIKey         string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Temperature    float32       `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens      int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	PromptTemplate string        `yaml:"prompt_template" mapstructure:"prompt_template"`
	RatePerMinute  int           `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
	SkipExisting   bool          `yaml:"skip_existing" mapstructure:"skip_existing"`
	Validate       bool          `yaml:"validate" mapstructure:"validate"`
}

// VocabularyConfig names the domain terms the semantic heuristics look for.
// Class and predicate names are local names within Namespace.
type VocabularyConfig struct {
	Namespace            string   `yaml:"namespace" mapstructure:"namespace"`
	CharacterClass       string   `yaml:"character_class" mapstructure:"character_class"`
	ConflictPredicate    string   `yaml:"conflict_predicate" mapstructure:"conflict_predicate"`
	DescriptionProperty  string   `yaml:"description_property" mapstructure:"description_property"`
	RoleProperty         string   `yaml:"role_property" mapstructure:"role_property"`
	RelationalPredicates []string `yaml:"relational_predicates" mapstructure:"relational_predicates"`
	ExpectedClasses      []string `yaml:"expected_classes" mapstructure:"expected_classes"`
	KnownCharacters      []string `yaml:"known_characters" mapstructure:"known_characters"`
	KnownEntities        []string `yaml:"known_entities" mapstructure:"known_entities"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr"`
}

// DefaultVocabulary returns the Antigone annotation vocabulary
func DefaultVocabulary() VocabularyConfig {
	return VocabularyConfig{
		Namespace:           "http://example.org/antigone#",
		CharacterClass:      "Character",
		ConflictPredicate:   "conflictBetween",
		DescriptionProperty: "description",
		RoleProperty:        "role",
		RelationalPredicates: []string{
			"hasMotivation", "makesMoralDecision", "experiencesEmotion", "advocatesFor",
		},
		ExpectedClasses: []string{
			"Character", "Motivation", "Emotion", "Theme", "Conflict", "MoralDecision", "EthicalPrinciple",
		},
		KnownCharacters: []string{
			"chorus", "creon", "ismene", "haemon", "teiresias", "antigone", "polyneices", "eteocles",
		},
		KnownEntities: []string{
			"antigone", "creon", "ismene", "haemon", "teiresias", "chorus",
			"polyneices", "eteocles", "oedipus", "jocasta",
			"eros", "desire", "justice", "law", "fate", "gods", "divine",
			"miasma", "bloodguilt", "polis", "city",
		},
	}
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		Schema: SchemaConfig{
			Path: "Context/Ontology.ttl",
		},
		Productions: ProductionsConfig{
			Dir:     "[PRODUCTIONS]",
			Pattern: "verse_*/triples_*.{ttl,nt}",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 8,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".triplecheck-cache",
			TTL:     24 * time.Hour,
		},
		Output: OutputConfig{
			Format:       "console",
			ShowWarnings: true,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "triplecheck/0.1 (+https://github.com/ppiankov/triplecheck)",
			MaxBodyBytes: 10 << 20,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-5.2",
			Temperature:    0.3,
			MaxTokens:      4000,
			Timeout:        5 * time.Minute,
			PromptTemplate: "Prompt.txt",
			RatePerMinute:  20,
			SkipExisting:   true,
			Validate:       true,
		},
		Vocabulary: DefaultVocabulary(),
		Metrics: MetricsConfig{
			Addr: ":9464",
		},
	}
}
