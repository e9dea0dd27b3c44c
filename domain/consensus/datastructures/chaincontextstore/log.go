package chaincontextstore

import (
	"github.com/ringnet/ringd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CCST")
