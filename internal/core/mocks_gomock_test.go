package core

import (
	"context"
	"reflect"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/git-as-svn/bridge/internal/types"
)

// MockRevisionStore is a generated-style mock for RevisionStore, hand-written
// to the shape mockgen produces, so tests can assert call counts on a
// collaborator that would otherwise require spinning up a full git history
// fixture.
type MockRevisionStore struct {
	ctrl     *gomock.Controller
	recorder *MockRevisionStoreMockRecorder
}

// MockRevisionStoreMockRecorder is the recorder for MockRevisionStore.
type MockRevisionStoreMockRecorder struct {
	mock *MockRevisionStore
}

// NewMockRevisionStore creates a new mock instance.
func NewMockRevisionStore(ctrl *gomock.Controller) *MockRevisionStore {
	mock := &MockRevisionStore{ctrl: ctrl}
	mock.recorder = &MockRevisionStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRevisionStore) EXPECT() *MockRevisionStoreMockRecorder {
	return m.recorder
}

func (m *MockRevisionStore) Latest() types.Revision {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Latest")
	ret0, _ := ret[0].(types.Revision)
	return ret0
}

func (mr *MockRevisionStoreMockRecorder) Latest() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Latest", reflect.TypeOf((*MockRevisionStore)(nil).Latest))
}

func (m *MockRevisionStore) ByID(id int64) (types.Revision, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ByID", id)
	ret0, _ := ret[0].(types.Revision)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRevisionStoreMockRecorder) ByID(id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ByID", reflect.TypeOf((*MockRevisionStore)(nil).ByID), id)
}

func (m *MockRevisionStore) ByDate(t time.Time) types.Revision {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ByDate", t)
	ret0, _ := ret[0].(types.Revision)
	return ret0
}

func (mr *MockRevisionStoreMockRecorder) ByDate(t interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ByDate", reflect.TypeOf((*MockRevisionStore)(nil).ByDate), t)
}

func (m *MockRevisionStore) ByGitCommit(oid string) (types.Revision, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ByGitCommit", oid)
	ret0, _ := ret[0].(types.Revision)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockRevisionStoreMockRecorder) ByGitCommit(oid interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ByGitCommit", reflect.TypeOf((*MockRevisionStore)(nil).ByGitCommit), oid)
}

func (m *MockRevisionStore) LastChange(path string, beforeRev int64) (int64, bool) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LastChange", path, beforeRev)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(bool)
	return ret0, ret1
}

func (mr *MockRevisionStoreMockRecorder) LastChange(path, beforeRev interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LastChange", reflect.TypeOf((*MockRevisionStore)(nil).LastChange), path, beforeRev)
}

func (m *MockRevisionStore) Update(ctx context.Context) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockRevisionStoreMockRecorder) Update(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockRevisionStore)(nil).Update), ctx)
}

// MockLockManager is a generated-style mock for LockManager, used where a
// test needs to assert how many times a commit consumes (or, on a failed
// push, does not consume) locks rather than just its end state.
type MockLockManager struct {
	ctrl     *gomock.Controller
	recorder *MockLockManagerMockRecorder
}

// MockLockManagerMockRecorder is the recorder for MockLockManager.
type MockLockManagerMockRecorder struct {
	mock *MockLockManager
}

// NewMockLockManager creates a new mock instance.
func NewMockLockManager(ctrl *gomock.Controller) *MockLockManager {
	mock := &MockLockManager{ctrl: ctrl}
	mock.recorder = &MockLockManagerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLockManager) EXPECT() *MockLockManagerMockRecorder {
	return m.recorder
}

func (m *MockLockManager) Lock(paths map[string]int64, comment string, force bool, user string) map[string]LockResult {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Lock", paths, comment, force, user)
	ret0, _ := ret[0].(map[string]LockResult)
	return ret0
}

func (mr *MockLockManagerMockRecorder) Lock(paths, comment, force, user interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Lock", reflect.TypeOf((*MockLockManager)(nil).Lock), paths, comment, force, user)
}

func (m *MockLockManager) Unlock(tokens map[string]string, breakLock bool, user string) map[string]error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Unlock", tokens, breakLock, user)
	ret0, _ := ret[0].(map[string]error)
	return ret0
}

func (mr *MockLockManagerMockRecorder) Unlock(tokens, breakLock, user interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Unlock", reflect.TypeOf((*MockLockManager)(nil).Unlock), tokens, breakLock, user)
}

func (m *MockLockManager) GetLock(path string) (types.Lock, bool) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetLock", path)
	ret0, _ := ret[0].(types.Lock)
	ret1, _ := ret[1].(bool)
	return ret0, ret1
}

func (mr *MockLockManagerMockRecorder) GetLock(path interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetLock", reflect.TypeOf((*MockLockManager)(nil).GetLock), path)
}

func (m *MockLockManager) GetLocks(prefix string) []types.Lock {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetLocks", prefix)
	ret0, _ := ret[0].([]types.Lock)
	return ret0
}

func (mr *MockLockManagerMockRecorder) GetLocks(prefix interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetLocks", reflect.TypeOf((*MockLockManager)(nil).GetLocks), prefix)
}

func (m *MockLockManager) ValidateForCommit(editedPaths []string, suppliedTokens map[string]string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ValidateForCommit", editedPaths, suppliedTokens)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockLockManagerMockRecorder) ValidateForCommit(editedPaths, suppliedTokens interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ValidateForCommit", reflect.TypeOf((*MockLockManager)(nil).ValidateForCommit), editedPaths, suppliedTokens)
}

func (m *MockLockManager) ConsumeForCommit(editedPaths []string, suppliedTokens map[string]string, keepLocks bool) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ConsumeForCommit", editedPaths, suppliedTokens, keepLocks)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockLockManagerMockRecorder) ConsumeForCommit(editedPaths, suppliedTokens, keepLocks interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ConsumeForCommit", reflect.TypeOf((*MockLockManager)(nil).ConsumeForCommit), editedPaths, suppliedTokens, keepLocks)
}
