package cmd

import (
	"go.uber.org/zap"
)

func makeLogger(isDebug bool) *zap.SugaredLogger {
	logger := zap.NewNop()
	if isDebug {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
		}
	}

	return logger.Sugar()
}
