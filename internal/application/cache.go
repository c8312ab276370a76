package application

import "context"

// Cache regions. Mutations clear whole regions, never single keys: tracking
// which keys a given write invalidates would need a dependency graph (an ad
// detail depends on its image and its owner), and a full clear sidesteps
// read-write races over individual keys.
const (
	RegionAdsByUser  = "ads:user"   // per-owner ad lists, keyed by username
	RegionAdDetail   = "ads:detail" // per-ad detail, keyed by ad id
	RegionAdComments = "comments:ad"
)

// Cache is the read-cache collaborator. Clear is the only supported
// invalidation and only mutation services call it, from commit hooks.
type Cache interface {
	Get(ctx context.Context, region, key string, dest any) (bool, error)
	Put(ctx context.Context, region, key string, value any) error
	Clear(ctx context.Context, region string) error
	ClearAll(ctx context.Context) error
}
