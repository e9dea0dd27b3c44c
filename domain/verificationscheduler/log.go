package verificationscheduler

import (
	"github.com/ringnet/ringd/infrastructure/logger"
	"github.com/ringnet/ringd/util/panics"
)

var log = logger.RegisterSubSystem("VSCH")
var spawn = panics.GoroutineWrapperFunc(log)
