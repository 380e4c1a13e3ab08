package utils

import (
	"github.com/sirupsen/logrus"
)

// InitLogger 初始化全局日志器
// 级别非法时回退到info并给出提示
func InitLogger(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
		DisableColors:   true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("无法识别的日志级别 %q，回退到info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}
