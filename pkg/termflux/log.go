package termflux

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "termflux")
