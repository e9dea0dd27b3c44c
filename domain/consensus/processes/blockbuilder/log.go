package blockbuilder

import (
	"github.com/ringnet/ringd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDLB")
