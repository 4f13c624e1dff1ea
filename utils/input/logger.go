package input

import (
	"github.com/sirupsen/logrus"
)

// 模块日志记录器
// 功能：为input模块提供统一的日志记录功能
// 说明：使用logrus库，为所有日志添加模块标识，便于日志分类和调试
var log = logrus.WithField("module", "input")
