package llm

import (
	"fmt"
	"sync"
)

// =============================================================================
// 工厂模式实现 - 创建不同的LLM客户端
// =============================================================================

// ClientCreator 客户端创建函数类型
type ClientCreator func(config *ClientConfig) (Client, error)

// Factory LLM客户端工厂
// 提供商在服务启动时由显式配置选定，工厂本身不持有进程级当前提供商状态
type Factory struct {
	creators map[Provider]ClientCreator
	mutex    sync.RWMutex
}

// NewFactory 创建LLM工厂
func NewFactory() *Factory {
	factory := &Factory{
		creators: make(map[Provider]ClientCreator),
	}

	// 注册默认的客户端创建器
	factory.registerDefaultCreators()

	return factory
}

// registerDefaultCreators 注册默认的客户端创建器
func (f *Factory) registerDefaultCreators() {
	f.creators[ProviderOpenAI] = func(config *ClientConfig) (Client, error) {
		return NewOpenAIClient(config)
	}

	f.creators[ProviderGroq] = func(config *ClientConfig) (Client, error) {
		return NewGroqClient(config)
	}

	f.creators[ProviderAnthropic] = func(config *ClientConfig) (Client, error) {
		return NewAnthropicClient(config)
	}
}

// RegisterProvider 注册新的LLM提供商 - 支持扩展与测试替身
func (f *Factory) RegisterProvider(provider Provider, creator ClientCreator) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.creators[provider] = creator
}

// CreateClient 创建LLM客户端 - 工厂方法
// 未注册的提供商与缺少凭证是两类不同的构造期错误
func (f *Factory) CreateClient(config *ClientConfig) (Client, error) {
	f.mutex.RLock()
	creator, exists := f.creators[config.Provider]
	f.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.Provider)
	}

	return creator(config)
}

// ListProviders 列出所有支持的提供商
func (f *Factory) ListProviders() []Provider {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	providers := make([]Provider, 0, len(f.creators))
	for provider := range f.creators {
		providers = append(providers, provider)
	}

	return providers
}
