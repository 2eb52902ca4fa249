package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 服务端运行配置，来自 YAML 文件；缺省值见 DefaultConfig
type Config struct {
	Addr     string `yaml:"addr"`
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`

	// 出生点随机范围（与地图像素尺寸一致）
	WorldWidth  float64 `yaml:"world_width"`
	WorldHeight float64 `yaml:"world_height"`

	// 每个空间聊天记录上限，超出后 FIFO 驱逐
	ChatLogMax int `yaml:"chat_log_max"`

	SendQueueLen int   `yaml:"send_queue_len"`
	CmdQueueLen  int   `yaml:"cmd_queue_len"`
	ReadLimit    int64 `yaml:"read_limit"`
	PongWaitSec  int   `yaml:"pong_wait_sec"`
}

// DefaultConfig 返回全部缺省值（无配置文件也可直接启动）
func DefaultConfig() *Config {
	return &Config{
		Addr:         ":8080",
		LogFile:      "app.log",
		LogLevel:     "info",
		WorldWidth:   1920,
		WorldHeight:  1200,
		ChatLogMax:   100,
		SendQueueLen: 64,
		CmdQueueLen:  256,
		ReadLimit:    1 << 20, // 1MB
		PongWaitSec:  60,
	}
}

// LoadConfig 读取 YAML 配置；path 为空时直接返回缺省配置
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate 校验字段合法性，防止明显配置错误带病启动
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr 不能为空")
	}
	if c.WorldWidth <= 0 || c.WorldHeight <= 0 {
		return fmt.Errorf("world 尺寸必须为正: %vx%v", c.WorldWidth, c.WorldHeight)
	}
	if c.ChatLogMax <= 0 {
		return fmt.Errorf("chat_log_max 必须为正: %d", c.ChatLogMax)
	}
	if c.SendQueueLen <= 0 || c.CmdQueueLen <= 0 {
		return fmt.Errorf("队列长度必须为正")
	}
	return nil
}
