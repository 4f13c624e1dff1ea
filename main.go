package main

import (
	"encoding/base64"
	"flag"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/output"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/server"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/task"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/trafficcontrol-sim-oss/utils/logbuffer"
)

var (
	// 模拟任务名，主要用于输出的数据库集合名前缀
	job = flag.String("job", "job0", "the name of the whole simulation task")
	// 本程序监听的HTTP地址，非空时覆盖配置文件中的server.listen
	listenAddr = flag.String("listen", "", "HTTP listening address (empty means headless mode unless set in config)")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")
	// 日志查询接口保留的日志行数
	logBufferSize = flag.Int("log.buffer_size", 500, "number of recent log lines kept for the logs api")

	log = logrus.WithField("module", "atcs")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	logs := logbuffer.New(*logBufferSize)
	logrus.AddHook(logs)

	// 获取配置
	var c config.Config
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("%+v", c)

	t := task.NewContext(*job, c)
	defer t.Close()

	// 数据库步快照记录
	if c.Output.MongoURI != "" {
		db := c.Output.MongoDB
		if db == "" {
			db = "trafficcontrol"
		}
		col := c.Output.MongoCol
		if col == "" {
			col = *job + "_steps"
		}
		recorder := output.NewRecorder(c.Output.MongoURI, db, col)
		defer recorder.Close()
		t.AddStepHook(recorder.Record)
	}

	addr := *listenAddr
	if addr == "" {
		addr = c.Server.Listen
	}
	if addr != "" {
		// 服务模式：步进由HTTP接口驱动
		s := server.New(t, addr, logs)
		if err := s.Serve(); err != nil {
			log.Panicf("http server err: %v", err)
		}
		return
	}

	// 无头模式：跑完配置的全部步数后输出最终状态与报告
	t.Run()
	if c.Output.DataDir != "" {
		if _, err := t.SaveState(""); err != nil {
			log.Errorf("failed to save final state: %v", err)
		}
	}
	if c.Output.ReportDir != "" {
		if _, err := t.SaveReport(""); err != nil {
			log.Errorf("failed to save final report: %v", err)
		}
	}
}
