package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"

	"funnelcrm/internal/common"
	"funnelcrm/internal/models"
	"funnelcrm/internal/repositories"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BrandingService owns tenant workspace appearance: logo uploads go to
// object storage, theme settings live on the tenant row.
type BrandingService interface {
	UploadLogo(ctx context.Context, tenantID uuid.UUID, reader io.Reader, size int64, contentType, filename string) (*models.Tenant, error)
	UpdateTheme(ctx context.Context, tenantID uuid.UUID, primaryColor string, darkMode bool) (*models.Tenant, error)
}

type brandingService struct {
	client     *minio.Client
	bucket     string
	publicBase string
	tenantRepo repositories.TenantRepository
	cache      TenantCache
}

func NewBrandingService(endpoint, accessKey, secretKey, bucket string, useSSL bool,
	tenantRepo repositories.TenantRepository, cache TenantCache) (BrandingService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connect: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio bucket create: %w", err)
		}
		log.Printf("Created bucket %s", bucket)
	}

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return &brandingService{
		client:     client,
		bucket:     bucket,
		publicBase: fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket),
		tenantRepo: tenantRepo,
		cache:      cache,
	}, nil
}

// UploadLogo stores the logo under a per-tenant prefix and records the
// resulting URL on the tenant.
func (s *brandingService) UploadLogo(ctx context.Context, tenantID uuid.UUID, reader io.Reader,
	size int64, contentType, filename string) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == "cancelled" {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, common.ErrTenantCancelled)
	}

	objectName := fmt.Sprintf("logos/%s/%s%s", tenantID, uuid.New(), path.Ext(filename))
	if _, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return nil, fmt.Errorf("logo upload: %w", err)
	}

	tenant.LogoURL = s.publicBase + "/" + objectName
	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return tenant, nil
}

func (s *brandingService) UpdateTheme(ctx context.Context, tenantID uuid.UUID,
	primaryColor string, darkMode bool) (*models.Tenant, error) {
	if err := common.ValidateRequiredString(primaryColor, "primary_color"); err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == "cancelled" {
		return nil, fmt.Errorf("tenant %s: %w", tenantID, common.ErrTenantCancelled)
	}
	tenant.PrimaryColor = primaryColor
	tenant.DarkMode = darkMode
	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return tenant, nil
}

func (s *brandingService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTenant(ctx, tenantID); err != nil {
		log.Printf("tenant cache invalidation failed: %v", err)
	}
}
