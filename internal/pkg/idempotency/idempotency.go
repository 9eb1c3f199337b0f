package idempotency

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyFailed     = errors.New("operation already failed")
	ErrInvalidState      = errors.New("invalid state")
)

type State string

const (
	StateNone       State = "none"        // operation can proceed
	StateInProgress State = "in_progress" // operation already in progress
	StateCompleted  State = "completed"   // operation already completed, result is replayable
	StateFailed     State = "failed"      // previously operation failed
	StateError      State = "error"       // this operation error
)

func (s State) String() string {
	return string(s)
}

// Store is the key/value backend the tracker runs on.
type Store interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) ([]byte, error), opts ...Option) ([]byte, bool, error)
}

// Tracker records the state of keyed operations so a retried request
// replays the first result instead of running twice.
type Tracker struct {
	store  Store
	prefix string
}

func New(store Store) *Tracker {
	return &Tracker{store: store, prefix: "idempotency:"}
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 10 * time.Minute

	// completed values are stored as marker + payload.
	completedMarker = "completed:"
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
	release      func(error) bool
}

func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

// WithReleaseOn frees the key, instead of marking it failed, when fn fails
// with an error for which release returns true. A retry with the same key
// then runs fn again.
func WithReleaseOn(release func(error) bool) Option {
	return func(o *execOptions) {
		o.release = release
	}
}

func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = stateTTL
	}
}

// Acquire tries to start an operation. For a completed operation the stored
// payload is returned alongside StateCompleted.
func (t *Tracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, []byte, error) {
	fk := t.prefix + key

	acquired, err := t.store.SetNX(ctx, fk, StateInProgress.String(), lockDuration)
	if err != nil {
		return StateError, nil, err
	}
	if acquired {
		return StateNone, nil, nil
	}

	result, found, err := t.store.Get(ctx, fk)
	if err != nil {
		return StateError, nil, err
	}
	if !found {
		// expired between SetNX and Get
		acquired, err = t.store.SetNX(ctx, fk, StateInProgress.String(), lockDuration)
		if err != nil {
			return StateError, nil, err
		}
		if acquired {
			return StateNone, nil, nil
		}
		return StateError, nil, ErrInvalidState
	}

	switch {
	case result == StateInProgress.String():
		return StateInProgress, nil, nil
	case result == StateFailed.String():
		return StateFailed, nil, nil
	case len(result) >= len(completedMarker) && result[:len(completedMarker)] == completedMarker:
		return StateCompleted, []byte(result[len(completedMarker):]), nil
	default:
		return StateError, nil, ErrInvalidState
	}
}

func (t *Tracker) MarkCompleted(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return t.store.Set(ctx, t.prefix+key, completedMarker+string(payload), ttl)
}

func (t *Tracker) MarkFailed(ctx context.Context, key string, ttl time.Duration) error {
	return t.store.Set(ctx, t.prefix+key, StateFailed.String(), ttl)
}

// Release forgets the key so the next Acquire starts afresh.
func (t *Tracker) Release(ctx context.Context, key string) error {
	return t.store.Del(ctx, t.prefix+key)
}

// Exec runs fn once per key. The bool result reports whether the payload
// is a replay of an earlier completed run.
func (t *Tracker) Exec(
	ctx context.Context,
	key string,
	fn func(context.Context) ([]byte, error),
	opts ...Option,
) ([]byte, bool, error) {
	execOpt := &execOptions{
		lockDuration: defaultLockDuration,
		stateTTL:     defaultStateTTL,
	}
	for _, opt := range opts {
		opt(execOpt)
	}
	if execOpt.lockDuration <= 0 {
		execOpt.lockDuration = defaultLockDuration
	}
	if execOpt.stateTTL <= 0 {
		execOpt.stateTTL = defaultStateTTL
	}

	state, payload, err := t.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return nil, false, err
	}

	switch state {
	case StateInProgress:
		return nil, false, ErrAlreadyInProgress
	case StateCompleted:
		return payload, true, nil
	case StateFailed:
		return nil, false, ErrAlreadyFailed
	case StateNone, StateError:
	}

	payload, err = fn(ctx)
	if err != nil && execOpt.release != nil && execOpt.release(err) {
		if delErr := t.Release(ctx, key); delErr != nil {
			return nil, false, errors.Join(err, delErr)
		}
		return nil, false, err
	}
	if err != nil {
		if markErr := t.MarkFailed(ctx, key, execOpt.stateTTL); markErr != nil {
			return nil, false, errors.Join(err, markErr)
		}
		return nil, false, err
	}

	if err := t.MarkCompleted(ctx, key, payload, execOpt.stateTTL); err != nil {
		return nil, false, err
	}

	return payload, false, nil
}
