package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"postcard/contexts/content-pipeline/poi-service/domain/entities"
	domainerrors "postcard/contexts/content-pipeline/poi-service/domain/errors"
	"postcard/contexts/content-pipeline/poi-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Create(ctx context.Context, poi entities.POI) error {
	row := poiModelFromEntity(poi)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidPOIInput
		}
		return err
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, poi entities.POI) error {
	row := poiModelFromEntity(poi)
	result := r.db.WithContext(ctx).
		Model(&poiModel{}).
		Where("poi_id = ?", row.POIID).
		Updates(map[string]any{
			"name":        row.Name,
			"description": row.Description,
			"latitude":    row.Latitude,
			"longitude":   row.Longitude,
			"address":     row.Address,
			"tags":        row.Tags,
			"status":      row.Status,
			"version":     row.Version,
			"updated_at":  row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPOINotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, poiID string) (entities.POI, error) {
	var row poiModel
	err := r.db.WithContext(ctx).
		Where("poi_id = ?", strings.TrimSpace(poiID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.POI{}, domainerrors.ErrPOINotFound
		}
		return entities.POI{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.POIListFilter) ([]entities.POI, int, error) {
	tx := r.db.WithContext(ctx).Model(&poiModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var rows []poiModel
	if err := tx.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}

	items := make([]entities.POI, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, int(total), nil
}

type poiModel struct {
	POIID       string    `gorm:"column:poi_id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description string    `gorm:"column:description"`
	Latitude    float64   `gorm:"column:latitude"`
	Longitude   float64   `gorm:"column:longitude"`
	Address     string    `gorm:"column:address"`
	Tags        []string  `gorm:"column:tags;type:text[]"`
	Status      string    `gorm:"column:status"`
	Version     int       `gorm:"column:version"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (poiModel) TableName() string {
	return "pois"
}

func poiModelFromEntity(item entities.POI) poiModel {
	return poiModel{
		POIID:       strings.TrimSpace(item.POIID),
		Name:        strings.TrimSpace(item.Name),
		Description: strings.TrimSpace(item.Description),
		Latitude:    item.Latitude,
		Longitude:   item.Longitude,
		Address:     strings.TrimSpace(item.Address),
		Tags:        copyOrEmpty(item.Tags),
		Status:      item.Status,
		Version:     item.Version,
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func (m poiModel) toEntity() entities.POI {
	return entities.POI{
		POIID:       m.POIID,
		Name:        m.Name,
		Description: m.Description,
		Latitude:    m.Latitude,
		Longitude:   m.Longitude,
		Address:     m.Address,
		Tags:        copyOrEmpty(m.Tags),
		Status:      m.Status,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func copyOrEmpty(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return append([]string(nil), items...)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.POIRepository = (*Repository)(nil)
