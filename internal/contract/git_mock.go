package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient interface.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// GetRevisionsForPath implements the GitClient interface.
func (m *MockGitClient) GetRevisionsForPath(ctx context.Context, repoPath, path, ref string, n int) ([]RevisionRef, error) {
	ret := m.Called(ctx, repoPath, path, ref, n)
	refs, _ := ret.Get(0).([]RevisionRef)
	return refs, ret.Error(1)
}

// ShowFileAtRevision implements the GitClient interface.
func (m *MockGitClient) ShowFileAtRevision(ctx context.Context, repoPath, rev, path string) ([]byte, error) {
	ret := m.Called(ctx, repoPath, rev, path)
	content, _ := ret.Get(0).([]byte)
	return content, ret.Error(1)
}

// ListFilesAtRevision implements the GitClient interface.
func (m *MockGitClient) ListFilesAtRevision(ctx context.Context, repoPath, rev, dir string) ([]string, error) {
	ret := m.Called(ctx, repoPath, rev, dir)
	paths, _ := ret.Get(0).([]string)
	return paths, ret.Error(1)
}
