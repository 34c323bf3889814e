// Package grpc provides a gRPC server for the product service.
package grpc

import (
	"context"
	"errors"
	"log/slog"

	perrors "github.com/abgdnv/productapi/internal/errors"
	"github.com/abgdnv/productapi/internal/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ProductService is the subset of the product service exposed over gRPC.
type ProductService interface {
	FindByID(ctx context.Context, id int64) (*service.ProductDto, error)
	FindAll(ctx context.Context) ([]service.ProductDto, error)
}

type Server struct {
	service ProductService
}

var _ ProductServiceServer = (*Server)(nil)

func NewServer(service ProductService) *Server {
	return &Server{service: service}
}

func (s *Server) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	logger := slog.With(slog.Int64("product_id", id))
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid product ID: %d", id)
	}

	found, err := s.service.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, status.Errorf(codes.NotFound, "product %d not found", id)
		}
		logger.ErrorContext(ctx, "service.FindByID failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "internal server error")
	}

	return toStruct(found)
}

func (s *Server) ListProducts(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	found, err := s.service.FindAll(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "service.FindAll failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "internal server error")
	}

	values := make([]*structpb.Value, 0, len(found))
	for i := range found {
		st, err := toStruct(&found[i])
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(st))
	}
	return &structpb.ListValue{Values: values}, nil
}

// toStruct renders a product with the same keys as its JSON form.
// Struct numbers are doubles, so ids above 2^53 lose precision on the wire.
func toStruct(product *service.ProductDto) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(map[string]any{
		"id":          product.ID,
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"qty":         product.Qty,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode product: %v", err)
	}
	return st, nil
}
