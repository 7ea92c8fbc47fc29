package internal

import "sync"

// DoneChan is closed exactly once to signal completion.
type DoneChan chan struct{}

// DoneFunc starts a shutdown and returns a channel closed when it
// finishes.
type DoneFunc func() DoneChan

func wrapWaitGroup(wg *sync.WaitGroup) DoneChan {
	ret := make(DoneChan)
	go func() {
		wg.Wait()
		close(ret)
	}()
	return ret
}

// Combine returns a DoneChan that closes once both first and second
// have closed.
func Combine(first DoneChan, second DoneChan) DoneChan {
	ret := make(DoneChan)
	go func() {
		<-first
		<-second
		close(ret)
	}()
	return ret
}
