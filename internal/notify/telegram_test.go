package notify

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AdityaBhonde/Vision-based-CCTV-Surveillance-System/pkg/types"
)

type fakeTelegramAPI struct {
	mu       sync.Mutex
	messages []string
	photos   int
	fail     bool
}

func (f *fakeTelegramAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.fail {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"ok":false,"description":"bot was blocked by the user"}`))
			return
		}

		switch r.URL.Path {
		case "/bottoken123/sendMessage":
			if err := r.ParseForm(); err != nil {
				t.Errorf("bad form: %v", err)
			}
			if r.PostForm.Get("chat_id") != "chat42" {
				t.Errorf("unexpected chat_id %q", r.PostForm.Get("chat_id"))
			}
			f.messages = append(f.messages, r.PostForm.Get("text"))
		case "/bottoken123/sendPhoto":
			if _, _, err := r.FormFile("photo"); err != nil {
				t.Errorf("missing photo part: %v", err)
			}
			f.photos++
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func TestNotifySendsMessageAndPhoto(t *testing.T) {
	api := &fakeTelegramAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "token123", "chat42")
	frame := &types.Frame{
		Image:     image.NewRGBA(image.Rect(0, 0, 16, 16)),
		Timestamp: time.Now(),
	}

	if err := tg.Notify(context.Background(), "ALERT [Weapon] knife", frame); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.messages) != 1 || api.messages[0] != "ALERT [Weapon] knife" {
		t.Fatalf("unexpected messages: %v", api.messages)
	}
	if api.photos != 1 {
		t.Fatalf("expected 1 photo upload, got %d", api.photos)
	}
}

func TestNotifyWithoutFrameSkipsPhoto(t *testing.T) {
	api := &fakeTelegramAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "token123", "chat42")
	if err := tg.Notify(context.Background(), "status check", nil); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if api.photos != 0 {
		t.Fatalf("no photo expected, got %d", api.photos)
	}
}

func TestNotifySurfacesAPIError(t *testing.T) {
	api := &fakeTelegramAPI{fail: true}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "token123", "chat42")
	err := tg.Notify(context.Background(), "alert", nil)
	if err == nil {
		t.Fatal("expected API error")
	}
	if want := "bot was blocked by the user"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not carry the API description", err)
	}
}

func TestFanoutReturnsFirstError(t *testing.T) {
	api := &fakeTelegramAPI{fail: true}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	ok := &countingNotifier{}
	fanout := Fanout{NewTelegramWithBase(srv.URL, "token123", "chat42"), ok}

	if err := fanout.Notify(context.Background(), "alert", nil); err == nil {
		t.Fatal("expected the telegram error to propagate")
	}
	if ok.calls != 1 {
		t.Fatalf("later notifiers must still run, got %d calls", ok.calls)
	}
}

type countingNotifier struct{ calls int }

func (c *countingNotifier) Notify(ctx context.Context, message string, frame *types.Frame) error {
	c.calls++
	return nil
}
