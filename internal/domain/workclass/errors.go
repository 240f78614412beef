package workclass

import "errors"

var ErrWorkClassNotFound = errors.New("work class not found")
