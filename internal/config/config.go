package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	// 服务配置
	ServiceName    string
	AppVersion     string
	Host           string // 服务监听地址
	HTTPServerPort string // HTTP服务端口
	GinMode        string // Gin运行模式
	Debug          bool

	// 日志配置
	LogLevel string

	// MongoDB配置
	MongoURI       string
	DatabaseName   string
	CollectionName string
	StoreType      string // 文档存储类型: mongo, memory

	// LLM配置
	LLMProvider     string // LLM提供商: openai, groq, anthropic
	OpenAIAPIKey    string
	GroqAPIKey      string
	AnthropicAPIKey string
	LLMModel        string
	LLMTemperature  float64 // 低温度保证输出稳定
	LLMMaxTokens    int
	LLMTimeout      time.Duration // 单次调用超时
	LLMRateLimit    int           // 每分钟请求数上限
}

// Load 从环境变量加载配置
func Load() *Config {
	// 尝试加载.env文件，优先尝试config目录，然后兼容根目录
	envPaths := []string{
		"config/.env",
		".env",
	}

	loaded := false
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				log.Printf("成功加载.env文件: %s", path)
				loaded = true
				break
			}
		}
	}

	if !loaded {
		log.Printf("警告: 未找到.env文件，尝试使用系统环境变量")
	}

	return &Config{
		// 服务配置默认值
		ServiceName:    getEnv("SERVICE_NAME", "domain-pack-backend"),
		AppVersion:     getEnv("APP_VERSION", "1.0.0"),
		Host:           getEnv("HOST", "0.0.0.0"),
		HTTPServerPort: getEnv("HTTP_SERVER_PORT", "8000"),
		GinMode:        getEnv("GIN_MODE", "release"),
		Debug:          getEnvAsBool("DEBUG", false),

		// 日志配置
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// MongoDB配置
		MongoURI:       getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName:   getEnv("DATABASE_NAME", "domain_config_db"),
		CollectionName: getEnv("COLLECTION_NAME", "yaml_configs"),
		StoreType:      getEnv("DOCUMENT_STORE_TYPE", "mongo"),

		// LLM配置
		LLMProvider:     getEnv("LLM_PROVIDER", "groq"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTemperature:  getEnvAsFloat("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 2000),
		LLMTimeout:      getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
		LLMRateLimit:    getEnvAsInt("LLM_RATE_LIMIT", 60),
	}
}

// APIKeyFor 返回指定提供商的API密钥
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIAPIKey
	case "groq":
		return c.GroqAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// String 返回配置的字符串表示
func (c *Config) String() string {
	return fmt.Sprintf(
		"服务名称: %s, 版本: %s, 端口: %s, 调试模式: %v, MongoDB: %s, "+
			"LLM提供商: %s, 模型: %s, 温度: %.2f, 最大Token: %d, 超时: %v",
		c.ServiceName, c.AppVersion, c.HTTPServerPort, c.Debug,
		maskString(c.MongoURI),
		c.LLMProvider, c.LLMModel, c.LLMTemperature, c.LLMMaxTokens, c.LLMTimeout,
	)
}

// 从环境变量获取字符串值
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// 从环境变量获取整数值
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

// 从环境变量获取布尔值
func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

// 从环境变量获取浮点值
func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return defaultValue
}

// 从环境变量获取时间值
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}

// 掩码字符串，用于日志输出安全
func maskString(input string) string {
	if len(input) <= 8 {
		return "***"
	}
	return input[:4] + "..." + input[len(input)-4:]
}
