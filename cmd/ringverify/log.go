package main

import (
	"github.com/ringnet/ringd/infrastructure/logger"
	"github.com/ringnet/ringd/util/panics"
)

var (
	log   = logger.RegisterSubSystem("RVFY")
	spawn = panics.GoroutineWrapperFunc(log)
)
