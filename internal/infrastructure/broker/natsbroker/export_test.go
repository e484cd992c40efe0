package natsbroker

import "time"

var Subject = subject

func (b *Broker) RetryDelay(attempt int) time.Duration { return b.retryDelay(attempt) }
