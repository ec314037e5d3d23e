package fixer_test

import (
	"context"
	"errors"
	"linkfixer/internal/fixer"
	"linkfixer/pkg/domain"
	mockreddit "linkfixer/pkg/reddit/mock"
	"linkfixer/pkg/storage/memory"
	mockstorage "linkfixer/pkg/storage/mock"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDispatcher(
	t *testing.T,
	opts fixer.Options) (*mockreddit.MockClient, *memory.Memory, *fixer.Dispatcher) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mockreddit.NewMockClient(ctrl)
	ledger := memory.New()
	poster := fixer.NewPoster(client, fixer.NewTemplate("owner"), time.Millisecond, nil, nil)

	return client, ledger, fixer.NewDispatcher(opts, client, ledger, poster, self, nil)
}

func feedOf(subs ...domain.Submission) <-chan domain.Submission {
	ch := make(chan domain.Submission, len(subs))
	for _, s := range subs {
		ch <- s
	}
	close(ch)

	return ch
}

func submission(id, subreddit, url string) domain.Submission {
	return domain.Submission{
		ID:        domain.SubmissionID(id),
		URL:       url,
		Subreddit: subreddit,
		Permalink: "https://www.reddit.com/r/" + subreddit + "/comments/" + id + "/",
	}
}

func TestDispatcher_PostsOnMatchingSubmissions(t *testing.T) {
	client, ledger, d := newTestDispatcher(t, fixer.Options{Workers: 4, DrainTimeout: time.Second})

	matching := submission("a1", "gifs", "https://fat.gfycat.com/happydog.gif")
	other := submission("a2", "gifs", "https://i.imgur.com/happydog.gif")

	client.EXPECT().Comments(gomock.Any(), matching.ID).Return(nil, nil).Times(1)
	client.EXPECT().Reply(gomock.Any(), matching.ID, gomock.Any()).Return("https://www.reddit.com/c/1", nil).Times(1)

	require.NoError(t, d.Run(context.Background(), feedOf(other, matching)))

	recorded, err := ledger.PostedComment(context.Background(), matching.ID)
	require.NoError(t, err)
	require.NotNil(t, recorded)

	recorded, err = ledger.PostedComment(context.Background(), other.ID)
	require.NoError(t, err)
	require.Nil(t, recorded)
}

func TestDispatcher_AlreadyPostedInThread(t *testing.T) {
	client, ledger, d := newTestDispatcher(t, fixer.Options{Workers: 1, DrainTimeout: time.Second})

	s := submission("a1", "gifs", "https://zippy.gfycat.com/happydog.gif")
	client.EXPECT().Comments(gomock.Any(), s.ID).Return([]domain.Comment{
		{ID: "c1", AuthorID: self.ID, Permalink: "https://www.reddit.com/c/old"},
	}, nil).Times(1)

	require.NoError(t, d.Run(context.Background(), feedOf(s)))

	recorded, err := ledger.PostedComment(context.Background(), s.ID)
	require.NoError(t, err)
	require.NotNil(t, recorded)
	require.Equal(t, "https://www.reddit.com/c/old", recorded.Permalink)
}

func TestDispatcher_SkipsRecordedSubmissions(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockreddit.NewMockClient(ctrl)
	ledger := mockstorage.NewMockCommentStorage(ctrl)
	poster := fixer.NewPoster(client, fixer.NewTemplate("owner"), time.Millisecond, nil, nil)
	d := fixer.NewDispatcher(fixer.Options{Workers: 1, DrainTimeout: time.Second}, client, ledger, poster, self, nil)

	s := submission("a1", "gifs", "https://giant.gfycat.com/happydog.gif")
	ledger.EXPECT().PostedComment(gomock.Any(), s.ID).Return(&domain.PostedComment{
		SubmissionID: s.ID,
		Slug:         "happydog",
		Permalink:    "https://www.reddit.com/c/old",
	}, nil)

	require.NoError(t, d.Run(context.Background(), feedOf(s)))
}

func TestDispatcher_LedgerErrorFallsBackToThread(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockreddit.NewMockClient(ctrl)
	ledger := mockstorage.NewMockCommentStorage(ctrl)
	poster := fixer.NewPoster(client, fixer.NewTemplate("owner"), time.Millisecond, nil, nil)
	d := fixer.NewDispatcher(fixer.Options{Workers: 1, DrainTimeout: time.Second}, client, ledger, poster, self, nil)

	s := submission("a1", "gifs", "https://giant.gfycat.com/happydog.gif")
	ledger.EXPECT().PostedComment(gomock.Any(), s.ID).Return(nil, errors.New("db down"))
	client.EXPECT().Comments(gomock.Any(), s.ID).Return(nil, nil)
	client.EXPECT().Reply(gomock.Any(), s.ID, gomock.Any()).Return("p", nil)
	ledger.EXPECT().StorePostedComment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c domain.PostedComment) (bool, error) {
			require.Equal(t, s.ID, c.SubmissionID)
			require.Equal(t, "happydog", c.Slug)
			require.Equal(t, "p", c.Permalink)

			return false, errors.New("db down")
		})

	require.NoError(t, d.Run(context.Background(), feedOf(s)))
}

func TestDispatcher_ExcludedSubreddit(t *testing.T) {
	_, _, d := newTestDispatcher(t, fixer.Options{
		Workers:      1,
		DrainTimeout: time.Second,
		Exclusions:   fixer.ParseExclusions("pics"),
	})

	// no client calls are expected
	require.NoError(t, d.Run(context.Background(), feedOf(submission("a1", "Pics", "https://fat.gfycat.com/dog.gif"))))
}

func TestDispatcher_UnitFailuresDoNotStopTheLoop(t *testing.T) {
	client, ledger, d := newTestDispatcher(t, fixer.Options{Workers: 1, DrainTimeout: time.Second})

	panics := submission("a1", "gifs", "https://fat.gfycat.com/one.gif")
	fails := submission("a2", "gifs", "https://fat.gfycat.com/two.gif")
	works := submission("a3", "gifs", "https://fat.gfycat.com/three.gif")

	client.EXPECT().Comments(gomock.Any(), panics.ID).DoAndReturn(
		func(context.Context, domain.SubmissionID) ([]domain.Comment, error) {
			panic("unexpected")
		})
	client.EXPECT().Comments(gomock.Any(), fails.ID).Return(nil, errors.New("boom"))
	client.EXPECT().Comments(gomock.Any(), works.ID).Return(nil, nil)
	client.EXPECT().Reply(gomock.Any(), works.ID, gomock.Any()).Return("p", nil)

	require.NoError(t, d.Run(context.Background(), feedOf(panics, fails, works)))

	recorded, err := ledger.PostedComment(context.Background(), works.ID)
	require.NoError(t, err)
	require.NotNil(t, recorded)
}

func TestDispatcher_BoundsConcurrency(t *testing.T) {
	const workers = 2

	client, _, d := newTestDispatcher(t, fixer.Options{Workers: workers, DrainTimeout: time.Second})

	var inFlight, maxInFlight atomic.Int32
	client.EXPECT().Comments(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domain.SubmissionID) ([]domain.Comment, error) {
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)

			return nil, nil
		}).Times(6)
	client.EXPECT().Reply(gomock.Any(), gomock.Any(), gomock.Any()).Return("p", nil).Times(6)

	var subs []domain.Submission
	for _, id := range []string{"b1", "b2", "b3", "b4", "b5", "b6"} {
		subs = append(subs, submission(id, "gifs", "https://fat.gfycat.com/dog.gif"))
	}

	require.NoError(t, d.Run(context.Background(), feedOf(subs...)))
	require.LessOrEqual(t, maxInFlight.Load(), int32(workers))
	require.Positive(t, maxInFlight.Load())
}

func TestDispatcher_DrainTimeoutCancelsUnits(t *testing.T) {
	client, _, d := newTestDispatcher(t, fixer.Options{Workers: 1, DrainTimeout: 20 * time.Millisecond})

	started := make(chan struct{})
	var once sync.Once
	client.EXPECT().Comments(gomock.Any(), gomock.Any()).Return(nil, nil)
	client.EXPECT().Reply(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.SubmissionID, _ string) (string, error) {
			once.Do(func() { close(started) })
			<-ctx.Done()

			return "", ctx.Err()
		})

	ctx, cancel := context.WithCancel(context.Background())
	feed := make(chan domain.Submission, 1)
	feed <- submission("a1", "gifs", "https://fat.gfycat.com/dog.gif")

	done := make(chan error)
	go func() { done <- d.Run(ctx, feed) }()

	<-started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop after the drain timeout")
	}
}

func TestDispatcher_DrainLetsUnitsFinish(t *testing.T) {
	client, ledger, d := newTestDispatcher(t, fixer.Options{Workers: 1, DrainTimeout: 5 * time.Second})

	started := make(chan struct{})
	release := make(chan struct{})
	client.EXPECT().Comments(gomock.Any(), gomock.Any()).Return(nil, nil)
	client.EXPECT().Reply(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.SubmissionID, _ string) (string, error) {
			close(started)
			<-release

			return "p", ctx.Err()
		})

	ctx, cancel := context.WithCancel(context.Background())
	feed := make(chan domain.Submission, 1)
	feed <- submission("a1", "gifs", "https://fat.gfycat.com/dog.gif")

	done := make(chan error)
	go func() { done <- d.Run(ctx, feed) }()

	<-started
	cancel()
	close(release)

	require.NoError(t, <-done)

	recorded, err := ledger.PostedComment(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, recorded)
}
