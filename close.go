package vecknn

// Close releases resources the engine owns, such as an accelerator opened by
// Config.Options. Contexts passed with WithAccelerator are left open.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	var firstErr error
	for i := len(e.opts.closers) - 1; i >= 0; i-- {
		if err := e.opts.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.opts.closers = nil
	return firstErr
}
