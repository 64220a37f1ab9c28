package layershell

// Run dispatches events until Stop is called or the connection fails. It is
// the cooperative heart of the library: configure handshakes, input routing,
// frame pacing and automatic rendering all happen inside this loop, on the
// calling goroutine.
func (c *Client) Run() error {
	log.Debug().Msg("event loop started")
	for {
		select {
		case <-c.done:
			log.Debug().Msg("event loop stopped")
			return nil
		default:
		}
		if err := c.Dispatch(); err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			log.Error().Err(err).Msg("event loop failed")
			return err
		}
	}
}

// Stop asks Run to exit. Safe to call from any goroutine and more than
// once. Because Dispatch blocks until the compositor sends something, the
// loop leaves on the next event batch at the latest.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
