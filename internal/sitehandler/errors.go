package sitehandler

import "errors"

var ErrInvalidOptions = errors.New("sitehandler: invalid options")
