package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Host    string `toml:"host" mapstructure:"host"`
	Port    string `toml:"port" mapstructure:"port"`
	Libonnx string `toml:"libonnx" mapstructure:"libonnx"`

	ModelUrl        string `toml:"model_url" mapstructure:"model_url"`
	ModelDir        string `toml:"model_dir" mapstructure:"model_dir"`
	ModelFileName   string `toml:"model_file_name" mapstructure:"model_file_name"`
	RemoverPoolSize int    `toml:"remover_pool_size" mapstructure:"remover_pool_size"`

	CaptionUrl               string `toml:"caption_url" mapstructure:"caption_url"`
	CaptionToken             string `toml:"caption_token" mapstructure:"caption_token"`
	CaptionPrompt            string `toml:"caption_prompt" mapstructure:"caption_prompt"`
	CaptionMaxNewTokens      int    `toml:"caption_max_new_tokens" mapstructure:"caption_max_new_tokens"`
	CaptionNoRepeatNgramSize int    `toml:"caption_no_repeat_ngram_size" mapstructure:"caption_no_repeat_ngram_size"`
	CaptionTimeout           int    `toml:"caption_timeout" mapstructure:"caption_timeout"` // seconds

	StopNouns      []string `toml:"stop_nouns" mapstructure:"stop_nouns"`
	StopAdjectives []string `toml:"stop_adjectives" mapstructure:"stop_adjectives"`
	DefaultTopK    int      `toml:"default_top_k" mapstructure:"default_top_k"`

	OutputDir      string `toml:"output_dir" mapstructure:"output_dir"`
	OutputMaxWidth int    `toml:"output_max_width" mapstructure:"output_max_width"`
	OutputTTL      int    `toml:"output_ttl" mapstructure:"output_ttl"` // minutes
	CleanupSpec    string `toml:"cleanup_spec" mapstructure:"cleanup_spec"`
}

const envPrefix = "CLOTHTAGGER_"

var (
	cfg      = Default()
	loadOnce sync.Once
)

func Default() Config {
	return Config{
		Host:                     "0.0.0.0",
		Port:                     "8000",
		ModelUrl:                 "https://github.com/danielgatis/rembg/releases/download/v0.0.0/u2net.onnx",
		ModelDir:                 "models",
		ModelFileName:            "u2net.onnx",
		RemoverPoolSize:          1,
		CaptionUrl:               "http://127.0.0.1:8001/caption",
		CaptionPrompt:            "the clothing item is",
		CaptionMaxNewTokens:      50,
		CaptionNoRepeatNgramSize: 2,
		CaptionTimeout:           60,
		StopNouns:                []string{"man", "woman", "person", "model", "studio", "background", "people"},
		StopAdjectives:           []string{},
		DefaultTopK:              8,
		OutputDir:                "outputs",
		OutputMaxWidth:           1000,
		OutputTTL:                60,
		CleanupSpec:              "@every 10m",
	}
}

func C() Config {
	loadOnce.Do(func() {
		_ = godotenv.Load()
		loaded, err := Load("config.toml")
		if err != nil {
			panic(err)
		}
		cfg = loaded
	})
	return cfg
}

// Load reads path over the defaults, then applies CLOTHTAGGER_* environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := toml.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	applyEnv(&c)
	return c, nil
}

func applyEnv(c *Config) {
	setString(&c.Host, "HOST")
	setString(&c.Port, "PORT")
	setString(&c.Libonnx, "LIBONNX")
	setString(&c.ModelUrl, "MODEL_URL")
	setString(&c.ModelDir, "MODEL_DIR")
	setString(&c.ModelFileName, "MODEL_FILE_NAME")
	setInt(&c.RemoverPoolSize, "REMOVER_POOL_SIZE")
	setString(&c.CaptionUrl, "CAPTION_URL")
	setString(&c.CaptionToken, "CAPTION_TOKEN")
	setString(&c.CaptionPrompt, "CAPTION_PROMPT")
	setInt(&c.CaptionMaxNewTokens, "CAPTION_MAX_NEW_TOKENS")
	setInt(&c.CaptionNoRepeatNgramSize, "CAPTION_NO_REPEAT_NGRAM_SIZE")
	setInt(&c.CaptionTimeout, "CAPTION_TIMEOUT")
	setInt(&c.DefaultTopK, "DEFAULT_TOP_K")
	setString(&c.OutputDir, "OUTPUT_DIR")
	setInt(&c.OutputMaxWidth, "OUTPUT_MAX_WIDTH")
	setInt(&c.OutputTTL, "OUTPUT_TTL")
	setString(&c.CleanupSpec, "CLEANUP_SPEC")
	setList(&c.StopNouns, "STOP_NOUNS")
	setList(&c.StopAdjectives, "STOP_ADJECTIVES")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

// comma separated, empty value clears the list
func setList(dst *[]string, key string) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return
	}
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}
