package output

import "github.com/sirupsen/logrus"

// log 日志记录
var log = logrus.WithField("module", "output")
