package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider  = "gemini"
	DefaultModel     = "gemini-2.0-flash-lite-preview-02-05"
	DefaultAPIKeyEnv = "GEMINI_API_KEY"
	DefaultTimeout   = 2 * time.Minute

	DefaultHistoryDriver = "json"
	DefaultHistoryPath   = "question_history.json"

	DefaultServerAddr = ":8501"
)

type Sock5Proxy struct {
	Host   string `yaml:"Host"`
	Port   int32  `yaml:"Port"`
	Enable bool   `yaml:"Enable"`
}

type LLM struct {
	Provider    string        `yaml:"Provider"`    // "gemini" / "openai"
	BaseURL     string        `yaml:"BaseURL"`     // 兼容 OpenAI API 的端点，gemini 可留空
	APIKey      string        `yaml:"APIKey"`      // 优先使用，留空时从 APIKeyEnv 读取
	APIKeyEnv   string        `yaml:"APIKeyEnv"`   // 保存 API Key 的环境变量名
	Model       string        `yaml:"Model"`       // 固定模型标识，运行期不可修改
	Temperature float32       `yaml:"Temperature"` // 0 表示使用模型默认值
	Timeout     time.Duration `yaml:"Timeout"`     // 单次模型调用超时
}

type History struct {
	Driver    string `yaml:"Driver"`    // "json" / "sqlite"
	Path      string `yaml:"Path"`      // json 文件路径或 sqlite 数据库文件路径
	ResetCron string `yaml:"ResetCron"` // 可选，定时清空历史的 cron 表达式
}

type Server struct {
	Addr string `yaml:"Addr"`
}

type Log struct {
	Dir      string `yaml:"Dir"`
	FileName string `yaml:"FileName"`
	Level    string `yaml:"Level"`
}

// QuestionTemplate 首页模板按钮
type QuestionTemplate struct {
	Name string `yaml:"Name"`
	Text string `yaml:"Text"`
}

type Config struct {
	Sock5Proxy Sock5Proxy         `yaml:"Sock5Proxy"`
	LLM        LLM                `yaml:"LLM"`
	History    History            `yaml:"History"`
	Server     Server             `yaml:"Server"`
	Log        Log                `yaml:"Log"`
	Templates  []QuestionTemplate `yaml:"Templates"`
}

func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load 解析 YAML 内容，补全默认值并校验
func Load(data []byte) (*Config, error) {
	var c Config
	err := yaml.Unmarshal(data, &c)
	if err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.resolveAPIKey()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = DefaultTimeout
	}
	if c.History.Driver == "" {
		c.History.Driver = DefaultHistoryDriver
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.FileName == "" {
		c.Log.FileName = "knowledge-hub.log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "debug"
	}
	if len(c.Templates) == 0 {
		c.Templates = DefaultTemplates()
	}
}

func (c *Config) resolveAPIKey() {
	if c.LLM.APIKey != "" {
		return
	}
	c.LLM.APIKey = os.Getenv(c.LLM.APIKeyEnv)
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	// 验证 LLM
	if c.LLM.Provider != "gemini" && c.LLM.Provider != "openai" {
		return fmt.Errorf("LLM.Provider 必须是 'gemini' 或 'openai'")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM.APIKey 不能为空（或设置环境变量 %s）", c.LLM.APIKeyEnv)
	}
	if c.LLM.Provider == "openai" && c.LLM.BaseURL == "" {
		return fmt.Errorf("LLM.BaseURL 不能为空（当 Provider 为 'openai' 时）")
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("LLM.Timeout 必须 >= 0")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM.Temperature 必须在 0 ~ 2 之间")
	}

	// 验证 History
	if c.History.Driver != "json" && c.History.Driver != "sqlite" {
		return fmt.Errorf("History.Driver 必须是 'json' 或 'sqlite'")
	}

	// 验证代理
	if c.Sock5Proxy.Enable {
		if c.Sock5Proxy.Host == "" {
			return fmt.Errorf("Sock5Proxy.Host 不能为空")
		}
		if c.Sock5Proxy.Port <= 0 {
			return fmt.Errorf("Sock5Proxy.Port 必须大于 0")
		}
	}

	for i, t := range c.Templates {
		if t.Name == "" || t.Text == "" {
			return fmt.Errorf("Templates[%d] 的 Name 和 Text 不能为空", i)
		}
	}

	return nil
}
