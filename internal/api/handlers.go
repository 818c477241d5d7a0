// Package api exposes the network entities over HTTP under /api/v3. Every
// request runs in its own unit of work.
package api

import (
	"context"
	"net/http"
	"net/netip"
	"strconv"

	"github.com/gorilla/mux"

	"regiond/internal/errs"
	"regiond/internal/filters"
	"regiond/internal/models"
	"regiond/internal/repositories"
	"regiond/internal/services"
	"regiond/internal/uow"
)

const (
	Prefix          = "/api/v3"
	defaultPageSize = 20
	maxPageSize     = 1000
)

type Handler struct {
	units *uow.Manager
}

func NewHandler(units *uow.Manager) *Handler {
	return &Handler{units: units}
}

// RegisterRoutes mounts the collection and item routes of every entity plus
// the subnet lookups.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix(Prefix).Subrouter()

	// lookups go first so that they win over /subnets/{id}
	api.HandleFunc("/subnets:best", h.bestSubnet).Methods(http.MethodGet)
	api.HandleFunc("/subnets/{id:[0-9]+}/dynamic-range", h.dynamicRange).Methods(http.MethodGet)
	api.HandleFunc("/subnets/{id:[0-9]+}/staticipaddresses:allocate", h.allocate).Methods(http.MethodPost)

	mount(api, "fabrics", h, func(c *services.Collection) service[models.Fabric] { return c.Fabrics }, decode[fabricRequest])
	mount(api, "vlans", h, func(c *services.Collection) service[models.VLAN] { return c.VLANs }, decode[vlanRequest])
	mount(api, "subnets", h, func(c *services.Collection) service[models.Subnet] { return c.Subnets }, decode[subnetRequest])
	mount(api, "ipranges", h, func(c *services.Collection) service[models.IPRange] { return c.IPRanges }, decode[ipRangeRequest])
	mount(api, "reservedips", h, func(c *services.Collection) service[models.ReservedIP] { return c.ReservedIPs }, decode[reservedIPRequest])
	mount(api, "staticipaddresses", h, func(c *services.Collection) service[models.StaticIPAddress] { return c.StaticIPAddresses }, decode[staticIPAddressRequest])
	mount(api, "dhcpsnippets", h, func(c *services.Collection) service[models.DHCPSnippet] { return c.DHCPSnippets }, decode[dhcpSnippetRequest])
}

// service is the part of services.BaseService the CRUD routes use.
type service[T models.Model] interface {
	GetByID(ctx context.Context, id int) (*T, error)
	List(ctx context.Context, token string, size int, q filters.QuerySpec) (models.ListResult[T], error)
	Create(ctx context.Context, res repositories.Resource) (*T, error)
	UpdateByID(ctx context.Context, id int, res repositories.Resource, etagIfMatch string) (*T, error)
	DeleteByID(ctx context.Context, id int, etagIfMatch string) (*T, error)
}

type resourceRequest interface {
	resource() (repositories.Resource, error)
}

func decode[R resourceRequest](r *http.Request) (repositories.Resource, error) {
	var req R
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return req.resource()
}

type routes[T models.Model] struct {
	h       *Handler
	service func(*services.Collection) service[T]
	decode  func(*http.Request) (repositories.Resource, error)
}

func mount[T models.Model](
	r *mux.Router,
	name string,
	h *Handler,
	svc func(*services.Collection) service[T],
	dec func(*http.Request) (repositories.Resource, error),
) {
	rt := &routes[T]{h: h, service: svc, decode: dec}
	r.HandleFunc("/"+name, rt.list).Methods(http.MethodGet)
	r.HandleFunc("/"+name, rt.create).Methods(http.MethodPost)
	r.HandleFunc("/"+name+"/{id:[0-9]+}", rt.get).Methods(http.MethodGet)
	r.HandleFunc("/"+name+"/{id:[0-9]+}", rt.update).Methods(http.MethodPut)
	r.HandleFunc("/"+name+"/{id:[0-9]+}", rt.delete).Methods(http.MethodDelete)
}

func (rt *routes[T]) list(w http.ResponseWriter, r *http.Request) {
	size := defaultPageSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxPageSize {
			writeError(w, r, errs.Validation("size must be between 1 and %d", maxPageSize))
			return
		}
		size = n
	}
	token := r.URL.Query().Get("token")

	var page models.ListResult[T]
	err := rt.h.units.Do(r.Context(), func(ctx context.Context, c *services.Collection) (err error) {
		page, err = rt.service(c).List(ctx, token, size, filters.QuerySpec{})
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (rt *routes[T]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var m *T
	err = rt.h.units.Do(r.Context(), func(ctx context.Context, c *services.Collection) (err error) {
		m, err = rt.service(c).GetByID(ctx, id)
		return err
	})
	switch {
	case err != nil:
		writeError(w, r, err)
	case m == nil:
		notFound(w, r)
	default:
		writeModel(w, http.StatusOK, *m)
	}
}

func (rt *routes[T]) create(w http.ResponseWriter, r *http.Request) {
	res, err := rt.decode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var m *T
	err = rt.h.units.Do(r.Context(), func(ctx context.Context, c *services.Collection) (err error) {
		m, err = rt.service(c).Create(ctx, res)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeModel(w, http.StatusCreated, *m)
}

func (rt *routes[T]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := rt.decode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var m *T
	err = rt.h.units.Do(r.Context(), func(ctx context.Context, c *services.Collection) (err error) {
		m, err = rt.service(c).UpdateByID(ctx, id, res, ifMatch(r))
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeModel(w, http.StatusOK, *m)
}

// delete answers 204 whether or not the row existed.
func (rt *routes[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = rt.h.units.Do(r.Context(), func(ctx context.Context, c *services.Collection) error {
		_, err := rt.service(c).DeleteByID(ctx, id, ifMatch(r))
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryIP(r *http.Request) (netip.Addr, error) {
	raw := r.URL.Query().Get("ip")
	ip, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, errs.Validation("invalid ip %q", raw)
	}
	return ip, nil
}

func (h *Handler) bestSubnet(w http.ResponseWriter, r *http.Request) {
	ip, err := queryIP(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var subnet *models.Subnet
	err = h.units.Do(r.Context(), func(ctx context.Context, c *services.Collection) (err error) {
		subnet, err = c.Subnets.FindBestSubnetForIP(ctx, ip)
		return err
	})
	switch {
	case err != nil:
		writeError(w, r, err)
	case subnet == nil:
		notFound(w, r)
	default:
		writeModel(w, http.StatusOK, *subnet)
	}
}

func (h *Handler) dynamicRange(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ip, err := queryIP(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var rng *models.IPRange
	err = h.units.Do(r.Context(), func(ctx context.Context, c *services.Collection) error {
		subnet, err := c.Subnets.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if subnet == nil {
			return errs.NotFound("Subnet %d does not exist.", id)
		}
		rng, err = c.IPRanges.GetDynamicRangeForIP(ctx, *subnet, ip)
		return err
	})
	switch {
	case err != nil:
		writeError(w, r, err)
	case rng == nil:
		notFound(w, r)
	default:
		writeModel(w, http.StatusOK, *rng)
	}
}

type allocateRequest struct {
	AllocType string `json:"alloc_type"`
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := allocateRequest{AllocType: models.IPAddressTypeAuto.String()}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	allocType, err := models.ParseIPAddressType(req.AllocType)
	if err != nil {
		writeError(w, r, errs.Validation("%v", err))
		return
	}
	var ip *models.StaticIPAddress
	err = h.units.Do(r.Context(), func(ctx context.Context, c *services.Collection) (err error) {
		ip, err = c.StaticIPAddresses.AllocateNext(ctx, id, allocType)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeModel(w, http.StatusCreated, *ip)
}
