package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"postcard/contexts/content-pipeline/poi-service/application"
	"postcard/contexts/content-pipeline/poi-service/domain/entities"
	"postcard/contexts/content-pipeline/poi-service/ports"
	httptransport "postcard/contexts/content-pipeline/poi-service/transport/http"
)

type Handler struct {
	POIs   application.Service
	Logger *slog.Logger
}

func (h Handler) CreatePOIHandler(ctx context.Context, req httptransport.CreatePOIRequest) (httptransport.GetPOIResponse, error) {
	poi, err := h.POIs.Create(ctx, application.CreatePOIInput{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		Tags:        append([]string(nil), req.Tags...),
	})
	if err != nil {
		return httptransport.GetPOIResponse{}, err
	}
	return httptransport.GetPOIResponse{POI: mapPOI(poi)}, nil
}

func (h Handler) UpdatePOIHandler(
	ctx context.Context,
	poiID string,
	req httptransport.UpdatePOIRequest,
) (httptransport.GetPOIResponse, error) {
	poi, err := h.POIs.Update(ctx, poiID, application.UpdatePOIInput{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		Tags:        req.Tags,
	})
	if err != nil {
		return httptransport.GetPOIResponse{}, err
	}
	return httptransport.GetPOIResponse{POI: mapPOI(poi)}, nil
}

func (h Handler) ValidatePOIHandler(ctx context.Context, poiID string) (httptransport.GetPOIResponse, error) {
	return h.statusAction(ctx, poiID, h.POIs.Validate)
}

func (h Handler) PublishPOIHandler(ctx context.Context, poiID string) (httptransport.GetPOIResponse, error) {
	return h.statusAction(ctx, poiID, h.POIs.Publish)
}

func (h Handler) ArchivePOIHandler(ctx context.Context, poiID string) (httptransport.GetPOIResponse, error) {
	return h.statusAction(ctx, poiID, h.POIs.Archive)
}

func (h Handler) RevertPOIHandler(ctx context.Context, poiID string) (httptransport.GetPOIResponse, error) {
	return h.statusAction(ctx, poiID, h.POIs.RevertToDraft)
}

func (h Handler) GetPOIHandler(ctx context.Context, poiID string) (httptransport.GetPOIResponse, error) {
	poi, err := h.POIs.Get(ctx, poiID)
	if err != nil {
		return httptransport.GetPOIResponse{}, err
	}
	return httptransport.GetPOIResponse{POI: mapPOI(poi)}, nil
}

func (h Handler) ListPOIsHandler(
	ctx context.Context,
	status string,
	page int,
	pageSize int,
) (httptransport.ListPOIsResponse, error) {
	items, total, err := h.POIs.List(ctx, ports.POIListFilter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return httptransport.ListPOIsResponse{}, err
	}
	result := make([]httptransport.POIDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapPOI(item))
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return httptransport.ListPOIsResponse{
		Items: result,
		Pagination: httptransport.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

func (h Handler) statusAction(
	ctx context.Context,
	poiID string,
	action func(context.Context, string) (entities.POI, error),
) (httptransport.GetPOIResponse, error) {
	poi, err := action(ctx, poiID)
	if err != nil {
		return httptransport.GetPOIResponse{}, err
	}
	return httptransport.GetPOIResponse{POI: mapPOI(poi)}, nil
}

func mapPOI(item entities.POI) httptransport.POIDTO {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return httptransport.POIDTO{
		POIID:       item.POIID,
		Name:        item.Name,
		Description: item.Description,
		Latitude:    item.Latitude,
		Longitude:   item.Longitude,
		Address:     item.Address,
		Tags:        tags,
		Status:      item.Status,
		Version:     item.Version,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
