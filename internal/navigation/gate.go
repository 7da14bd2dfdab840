package navigation

// AccessPolicy is the access-control collaborator. It owns root enumeration
// and visibility; the navigator never caches or mutates its state.
type AccessPolicy interface {
	Roots() []string
	IsDirectoryVisible(path string) bool
	IsFileVisible(path string) bool
	DenialReason(path string) string
}

// Gate adapts an AccessPolicy for the enumerator. It never fails: false is
// the only signal of invisibility.
type Gate struct {
	policy AccessPolicy
}

// NewGate wraps policy.
func NewGate(policy AccessPolicy) *Gate {
	return &Gate{policy: policy}
}

// Roots returns the policy's roots in policy order.
func (g *Gate) Roots() []string {
	return g.policy.Roots()
}

// IsVisible dispatches to the directory or file predicate.
func (g *Gate) IsVisible(path string, isDir bool) bool {
	if isDir {
		return g.policy.IsDirectoryVisible(path)
	}
	return g.policy.IsFileVisible(path)
}

// DenialReason forwards the policy's explanation for an invisible path.
func (g *Gate) DenialReason(path string) string {
	return g.policy.DenialReason(path)
}
