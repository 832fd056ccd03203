package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/yungbote/infobase-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/platform/dbctx"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime"
	"github.com/yungbote/infobase-backend/internal/realtime/bus"
)

func readCtx(ctx context.Context) dbctx.Context {
	return dbctx.New(ctx)
}

func notFound(op, msg string) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, msg, nil)
}

func validation(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

func mapRead(op string, err error) error {
	return aggregates.MapError(op, err)
}

// publish emits ev after a committed write. Delivery failures are logged, not returned.
func publish(ctx context.Context, log *logger.Logger, b bus.Bus, ev realtime.Event) {
	if b == nil {
		return
	}
	if err := b.Publish(ctx, ev); err != nil {
		log.Warn("Publish event failed", "type", ev.Type, "channel", ev.Channel, "error", err)
	}
}

// removeStored deletes the files a cascade released. The rows are already
// gone, so failures only leave orphaned files behind.
func removeStored(ctx context.Context, log *logger.Logger, store filestore.FileStore, res domainagg.CascadeResult) {
	if store == nil {
		return
	}
	for _, key := range res.FilePaths {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			log.Warn("Remove stored file failed", "key", key, "error", err)
		}
	}
	for _, prefix := range res.OutputFolders {
		if prefix == "" {
			continue
		}
		if !isArtifactFolder(prefix) {
			log.Warn("Skip output folder outside infobase namespace", "prefix", prefix)
			continue
		}
		if err := store.DeletePrefix(ctx, prefix); err != nil {
			log.Warn("Remove output folder failed", "prefix", prefix, "error", err)
		}
	}
}

// isArtifactFolder reports whether prefix lies inside some
// projects/<project>/<infobase> namespace, so removing it recursively cannot
// reach another upload.
func isArtifactFolder(prefix string) bool {
	key, err := filestore.CleanKey(prefix)
	if err != nil {
		return false
	}
	segs := strings.Split(key, "/")
	if len(segs) < 3 || segs[0] != "projects" {
		return false
	}
	for _, seg := range segs[1:3] {
		if _, err := strconv.ParseUint(seg, 10, 64); err != nil {
			return false
		}
	}
	return true
}
