package kafka

import "errors"

var errInvalidEvent = errors.New("engagement event missing event_id or action")
