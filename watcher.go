package laguz

import "context"

// Watcher observes a source and emits its raw contents on a channel.
// Implementations emit the current contents as soon as Watch is called so a
// Feed can populate its store at startup.
type Watcher interface {
	// Watch begins observing the source. The returned channel is closed
	// when ctx is canceled or the source fails permanently.
	Watch(ctx context.Context) (<-chan []byte, error)
}

// WatcherFunc adapts a function to the Watcher interface.
type WatcherFunc func(ctx context.Context) (<-chan []byte, error)

// Watch calls f.
func (f WatcherFunc) Watch(ctx context.Context) (<-chan []byte, error) {
	return f(ctx)
}

// StaticWatcher emits one payload and closes.
func StaticWatcher(data []byte) Watcher {
	return WatcherFunc(func(_ context.Context) (<-chan []byte, error) {
		ch := make(chan []byte, 1)
		ch <- data
		close(ch)
		return ch, nil
	})
}
