// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/bvk/broker/api"
	"github.com/bvk/broker/gobs"
)

// HandlerMap returns the http api handlers. Callers mount them on a
// http server at their map keys.
func (s *Server) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		api.StatusPath:     httpPostJSONHandler(s.doStatus),
		api.OffersListPath: httpPostJSONHandler(s.doOffersList),
	}
}

func (s *Server) doStatus(ctx context.Context, req *api.StatusRequest) (*api.StatusResponse, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	resp := &api.StatusResponse{
		ProductID:      s.opts.ProductID,
		StartTime:      s.startTime,
		LastTrendPrice: s.lastTick.Price,
		LastTrendTime:  s.lastTick.Time,
		NumPurchases:   s.numPurchases,
		NumOffers:      s.numOffers,
	}
	resp.RecentOffers = append(resp.RecentOffers, s.recentOffers...)
	return resp, nil
}

func (s *Server) doOffersList(ctx context.Context, req *api.OffersListRequest) (*api.OffersListResponse, error) {
	var offers []*api.Offer
	collect := func(ctx context.Context, record *gobs.OfferRecord) error {
		offer := &api.Offer{
			ID:        record.ID,
			Rate:      record.Rate,
			CreatedAt: record.CreatedAt,
		}
		for _, p := range record.Purchases {
			offer.Size = offer.Size.Add(p.Size)
			offer.Purchases = append(offer.Purchases, &api.Purchase{
				ID:   p.ID,
				Size: p.Size,
				Rate: p.Rate,
			})
		}
		offers = append(offers, offer)
		return nil
	}
	if err := s.journal.ScanOffers(ctx, collect); err != nil {
		return nil, fmt.Errorf("could not scan the offers journal: %w", err)
	}

	if req.Limit > 0 && len(offers) > req.Limit {
		offers = offers[len(offers)-req.Limit:]
	}
	return &api.OffersListResponse{Offers: offers}, nil
}

func httpPostJSONHandler[T1 any, T2 any](fn func(context.Context, *T1) (*T2, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "api requires POST method", http.StatusMethodNotAllowed)
			return
		}
		if v := r.Header.Get("content-type"); !strings.EqualFold(v, "application/json") {
			http.Error(w, "api requires application/json content type", http.StatusBadRequest)
			return
		}
		req := new(T1)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := fn(r.Context(), req)
		if err != nil {
			if errors.Is(err, os.ErrInvalid) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
