package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/depscout/depscout/pkg/pom"
	"github.com/depscout/depscout/pkg/resolve"
)

// DefaultDescriptorTTL bounds how long a parsed descriptor stays cached.
// Entries are keyed by path, size and mtime, so the TTL only matters for
// reclaiming space.
const DefaultDescriptorTTL = 7 * 24 * time.Hour

// DescriptorReader wraps pom.Read with a parse cache: unchanged files
// (same path, size and mtime) are served from the cache instead of
// being re-parsed. Read errors are never cached.
func DescriptorReader(c Cache, ttl time.Duration) resolve.ReadFunc {
	if ttl <= 0 {
		ttl = DefaultDescriptorTTL
	}
	return func(path string) (*pom.RawDescriptor, error) {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return pom.Read(path)
		}
		key := fmt.Sprintf("pom:%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())

		ctx := context.Background()
		if data, ok, err := c.Get(ctx, key); err == nil && ok {
			var desc pom.RawDescriptor
			if err := json.Unmarshal(data, &desc); err == nil {
				return &desc, nil
			}
			_ = c.Delete(ctx, key)
		}

		desc, err := pom.Read(path)
		if err != nil || desc == nil {
			return desc, err
		}
		if data, err := json.Marshal(desc); err == nil {
			_ = c.Set(ctx, key, data, ttl)
		}
		return desc, nil
	}
}
