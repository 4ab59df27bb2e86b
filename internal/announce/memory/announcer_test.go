package memory

import (
	"context"
	"testing"

	"github.com/JakeFAU/renewables-newsroom/internal/announce"
)

func TestAnnouncerStoresMessages(t *testing.T) {
	t.Parallel()

	a := New()
	id1, err := a.Publish(context.Background(), announce.TopicArticlePublished, announce.ArticlePublished{ArticleID: "1"})
	if err != nil || id1 != "memory-1" {
		t.Fatalf("unexpected publish result id=%s err=%v", id1, err)
	}
	id2, err := a.Publish(context.Background(), "other", "payload")
	if err != nil || id2 != "memory-2" {
		t.Fatalf("unexpected publish result id=%s err=%v", id2, err)
	}

	msgs := a.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if ev, ok := msgs[0].Payload.(announce.ArticlePublished); !ok || ev.ArticleID != "1" {
		t.Fatalf("payload not recorded: %+v", msgs[0])
	}

	msgs[0].Topic = "modified"
	if a.Messages()[0].Topic == "modified" {
		t.Fatal("expected Messages() to return a copy")
	}
}
