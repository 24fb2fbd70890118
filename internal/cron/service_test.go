package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

type fakeLock struct {
	acquired bool
	held     bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held {
		return false, nil
	}
	f.acquired = true
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.held = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return logg
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	registry := NewRegistry(success, failure)
	service, err := NewService(ServiceParams{
		Logger:   testLogger(t),
		Registry: registry,
		Lock:     &fakeLock{},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if success.runs != 1 || failure.runs != 1 {
		t.Fatalf("every job should run once, got %d and %d", success.runs, failure.runs)
	}
}

func TestServiceRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "job"}
	lock := &fakeLock{held: true}
	service, err := NewService(ServiceParams{
		Logger:   testLogger(t),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("jobs must not run while another instance holds the lock")
	}
}

func TestRegistryStoresJobs(t *testing.T) {
	registry := NewRegistry()
	jobA := &testJob{name: "a"}
	jobB := &testJob{name: "b"}
	registry.Register(jobA)
	registry.Register(jobB)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != Job(jobA) || jobs[1] != Job(jobB) {
		t.Fatalf("jobs returned out of order")
	}
	// ensure caller cannot mutate internal slice
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistryIgnoresDuplicateNames(t *testing.T) {
	first := &testJob{name: "orphan-image-sweep"}
	second := &testJob{name: "orphan-image-sweep"}
	registry := NewRegistry(first, second, nil)
	registry.Register(first)

	jobs := registry.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0] != Job(first) {
		t.Fatal("first registration should win")
	}
}

type fakeLockStore struct {
	values map[string]string
	setErr error
	getErr error
	delErr error
	dels   int
}

func (f *fakeLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if _, held := f.values[key]; held {
		return false, nil
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, held := f.values[key]
	if !held {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeLockStore) Del(_ context.Context, keys ...string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.dels++
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockAcquireAndRelease(t *testing.T) {
	store := &fakeLockStore{}
	lock, err := NewRedisLock(store, "locks:sweep", 0)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("first acquire should win, got ok=%v err=%v", ok, err)
	}

	rival, err := NewRedisLock(store, "locks:sweep", 0)
	if err != nil {
		t.Fatalf("construct rival: %v", err)
	}
	ok, err = rival.Acquire(context.Background())
	if err != nil || ok {
		t.Fatalf("second acquire must lose, got ok=%v err=%v", ok, err)
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.dels != 1 {
		t.Fatalf("expected one delete, got %d", store.dels)
	}

	ok, err = rival.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("acquire after release should win, got ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseLeavesForeignHolder(t *testing.T) {
	store := &fakeLockStore{}
	lock, err := NewRedisLock(store, "locks:sweep", 0)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if _, err := lock.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// the TTL expired and another replica took the lease
	store.values["locks:sweep"] = "someone-else"

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.dels != 0 {
		t.Fatal("a lock we no longer hold must not be deleted")
	}
	if store.values["locks:sweep"] != "someone-else" {
		t.Fatal("foreign holder's lease must survive")
	}
}

func TestRedisLockReleaseToleratesExpiredKey(t *testing.T) {
	store := &fakeLockStore{}
	lock, err := NewRedisLock(store, "locks:sweep", 0)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	if _, err := lock.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	delete(store.values, "locks:sweep")

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release after expiry should be a no-op, got %v", err)
	}
}
