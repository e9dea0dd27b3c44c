package blockprocessor

import (
	"github.com/ringnet/ringd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BLPR")
