package medallionsvc

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/LokaPoojithaDondeti/Cassandra/internal/common"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/docstore"
	"github.com/LokaPoojithaDondeti/Cassandra/internal/metrics"
)

// CollectionProvisioner đảm bảo collection tồn tại trước khi ghi.
// Lỗi kiểm tra hoặc tạo collection chỉ được ghi log, không dừng pipeline;
// nếu collection thật sự không có thì lần insert sau đó sẽ lỗi.
type CollectionProvisioner struct {
	store   docstore.Store
	metrics *metrics.Registry
	log     *logrus.Logger
}

// NewCollectionProvisioner tạo provisioner
func NewCollectionProvisioner(deps Deps) *CollectionProvisioner {
	deps = deps.withDefaults()
	return &CollectionProvisioner{store: deps.Store, metrics: deps.Metrics, log: deps.Log}
}

// Ensure tạo collection name nếu chưa có. Gọi nhiều lần không tạo lại, không xóa dữ liệu cũ.
func (p *CollectionProvisioner) Ensure(ctx context.Context, name string) {
	names, err := p.store.ListCollectionNames(ctx)
	if err != nil {
		p.fail(name, fmt.Errorf("%w: list collections: %w", common.ErrProvisioning, err))
		return
	}
	for _, n := range names {
		if n == name {
			p.log.WithField("collection", name).Debug("Collection already exists")
			return
		}
	}

	if err := p.store.CreateCollection(ctx, name); err != nil {
		p.fail(name, fmt.Errorf("%w: create collection: %w", common.ErrProvisioning, err))
		return
	}
	p.log.WithField("collection", name).Info("Collection created")
}

func (p *CollectionProvisioner) fail(name string, err error) {
	p.metrics.ProvisionFailures.WithLabelValues(name).Inc()
	p.log.WithFields(logrus.Fields{
		"collection": name,
		"code":       common.CodeOf(err),
		"transient":  common.IsTransient(err),
	}).WithError(err).Error("Collection provisioning failed, continuing")
}
