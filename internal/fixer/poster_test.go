package fixer_test

import (
	"context"
	"errors"
	"linkfixer/internal/fixer"
	"linkfixer/pkg/domain"
	mockreddit "linkfixer/pkg/reddit/mock"
	"linkfixer/pkg/serrors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const retryTime = 7 * time.Second

var sub = domain.Submission{ //nolint: gochecknoglobals
	ID:        "abc123",
	URL:       "https://fat.gfycat.com/happydog.gif",
	Permalink: "https://www.reddit.com/r/gifs/comments/abc123/dog/",
	Subreddit: "gifs",
}

type sleepRecorder struct {
	calls []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)

	return s.err
}

func newTestPoster(t *testing.T) (*mockreddit.MockClient, *sleepRecorder, *fixer.Poster) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mockreddit.NewMockClient(ctrl)
	sleeper := &sleepRecorder{}
	p := fixer.NewPoster(client, fixer.NewTemplate("owner"), retryTime, sleeper.sleep, nil)

	return client, sleeper, p
}

func TestClassify(t *testing.T) {
	cases := map[fixer.Class]error{
		fixer.ClassNone:             nil,
		fixer.ClassRateLimited:      serrors.With(serrors.ErrRateLimited, "slow down").WithRetryAfter(time.Minute),
		fixer.ClassForbidden:        serrors.With(serrors.ErrForbidden, "403"),
		fixer.ClassTransientNetwork: serrors.Wrap(serrors.ErrUnavailable, errors.New("reset"), "request failed"),
		fixer.ClassAPIPermanent:     serrors.With(serrors.ErrGone, "DELETED_LINK"),
		fixer.ClassAPITransient:     serrors.With(serrors.ErrAPI, "500"),
		fixer.ClassUnknown:          errors.New("boom"),
	}
	for class, err := range cases {
		require.Equal(t, class, fixer.Classify(err), class.String())
	}
}

func TestPoster_SuccessFirstTry(t *testing.T) {
	client, sleeper, p := newTestPoster(t)

	client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Return("https://www.reddit.com/c/1", nil).Times(1)

	permalink, err := p.Post(context.Background(), sub, "happydog")
	require.NoError(t, err)
	require.Equal(t, "https://www.reddit.com/c/1", permalink)
	require.Empty(t, sleeper.calls)
}

func TestPoster_RateLimitedUsesSignalledDelay(t *testing.T) {
	client, sleeper, p := newTestPoster(t)

	var bodies []string
	record := func(_ context.Context, _ domain.SubmissionID, body string) {
		bodies = append(bodies, body)
	}
	gomock.InOrder(
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Do(record).
			Return("", serrors.With(serrors.ErrRateLimited, "RATELIMIT").WithRetryAfter(9*time.Minute)),
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Do(record).
			Return("https://www.reddit.com/c/1", nil),
	)

	_, err := p.Post(context.Background(), sub, "happydog")
	require.NoError(t, err)
	require.Equal(t, []time.Duration{9 * time.Minute}, sleeper.calls)
	require.Len(t, bodies, 2)
	require.Equal(t, bodies[0], bodies[1])
	require.Contains(t, bodies[0], "https://gfycat.com/happydog")
}

func TestPoster_RateLimitedWithoutDelayFallsBack(t *testing.T) {
	client, sleeper, p := newTestPoster(t)

	gomock.InOrder(
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).
			Return("", serrors.With(serrors.ErrRateLimited, "RATELIMIT")),
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Return("p", nil),
	)

	_, err := p.Post(context.Background(), sub, "happydog")
	require.NoError(t, err)
	require.Equal(t, []time.Duration{retryTime}, sleeper.calls)
}

func TestPoster_TransientNetworkTwiceThenSuccess(t *testing.T) {
	client, sleeper, p := newTestPoster(t)

	netErr := serrors.Wrap(serrors.ErrUnavailable, errors.New("connection reset"), "request failed")
	gomock.InOrder(
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Return("", netErr),
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Return("", netErr),
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Return("p", nil),
	)

	_, err := p.Post(context.Background(), sub, "happydog")
	require.NoError(t, err)
	require.Equal(t, []time.Duration{retryTime, retryTime}, sleeper.calls)
}

func TestPoster_APITransientRetries(t *testing.T) {
	client, sleeper, p := newTestPoster(t)

	gomock.InOrder(
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Return("", serrors.With(serrors.ErrAPI, "502")),
		client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Return("p", nil),
	)

	_, err := p.Post(context.Background(), sub, "happydog")
	require.NoError(t, err)
	require.Equal(t, []time.Duration{retryTime}, sleeper.calls)
}

func TestPoster_Aborts(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{name: "forbidden", err: serrors.With(serrors.ErrForbidden, "403")},
		{name: "target deleted", err: serrors.With(serrors.ErrGone, "DELETED_LINK")},
		{name: "unknown", err: errors.New("boom")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, sleeper, p := newTestPoster(t)

			client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).Return("", tc.err).Times(1)

			_, err := p.Post(context.Background(), sub, "happydog")
			require.ErrorIs(t, err, tc.err)
			require.Empty(t, sleeper.calls)
		})
	}
}

func TestPoster_SleepInterrupted(t *testing.T) {
	client, sleeper, p := newTestPoster(t)
	sleeper.err = context.Canceled

	client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).
		Return("", serrors.With(serrors.ErrAPI, "500")).Times(1)

	_, err := p.Post(context.Background(), sub, "happydog")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPoster_CancelledContext(t *testing.T) {
	client, sleeper, p := newTestPoster(t)

	ctx, cancel := context.WithCancel(context.Background())
	client.EXPECT().Reply(gomock.Any(), sub.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.SubmissionID, _ string) (string, error) {
			cancel()

			return "", context.Canceled
		}).Times(1)

	_, err := p.Post(ctx, sub, "happydog")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, sleeper.calls)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, fixer.SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, fixer.SleepContext(ctx, time.Hour), context.Canceled)
}
