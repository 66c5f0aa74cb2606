package eventbus

import (
	"context"
	"testing"
)

type ping struct{ N int }
type pong struct{ N int }

func TestSubscribePublish(t *testing.T) {
	Use(New())
	defer Use(nil)

	var pings, pongs []int
	unsub := Subscribe(func(ctx context.Context, e ping) { pings = append(pings, e.N) })
	Subscribe(func(ctx context.Context, e pong) { pongs = append(pongs, e.N) })

	Publish(context.Background(), ping{1})
	Publish(context.Background(), pong{2})
	Publish(context.Background(), ping{3})

	if len(pings) != 2 || pings[0] != 1 || pings[1] != 3 {
		t.Fatalf("ping handler got %v", pings)
	}
	if len(pongs) != 1 || pongs[0] != 2 {
		t.Fatalf("pong handler got %v", pongs)
	}

	unsub()
	Publish(context.Background(), ping{4})
	if len(pings) != 2 {
		t.Fatalf("handler still invoked after unsubscribe: %v", pings)
	}
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	Use(nil)
	Publish(context.Background(), ping{1}) // must not panic
}
