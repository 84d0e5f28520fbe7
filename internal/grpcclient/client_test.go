package grpcclient

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/verifier"
	pb "github.com/ICTPass2002kgao/Tact-api-prod/proto"
)

type stubProcessorServer struct {
	pb.UnimplementedFaceProcessorServer
	resp    *pb.VerifyFacesResponse
	lastReq *pb.VerifyFacesRequest
}

func (s *stubProcessorServer) VerifyFaces(ctx context.Context, req *pb.VerifyFacesRequest) (*pb.VerifyFacesResponse, error) {
	s.lastReq = req
	return s.resp, nil
}

func startStubProcessor(t *testing.T, srv *stubProcessorServer) *grpc.ClientConn {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	pb.RegisterFaceProcessorServer(server, srv)
	go server.Serve(listener) //nolint:errcheck
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufconn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeTempImage(t *testing.T, name string, payload []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("failed to write temp image: %v", err)
	}
	return path
}

func TestGRPCVerifierMapsResponse(t *testing.T) {
	srv := &stubProcessorServer{resp: &pb.VerifyFacesResponse{Matched: true, Distance: 0.42, Threshold: 0.6}}
	conn := startStubProcessor(t, srv)

	v := &grpcVerifier{client: pb.NewFaceProcessorClient(conn), logger: zap.NewNop()}
	result, err := v.Verify(context.Background(), writeTempImage(t, "live.jpg", []byte("live")), writeTempImage(t, "ref.jpg", []byte("ref")))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if !result.Matched || result.Distance != 0.42 || result.Threshold != 0.6 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if string(srv.lastReq.GetLiveImage()) != "live" || string(srv.lastReq.GetReferenceImage()) != "ref" {
		t.Fatalf("image payloads not forwarded: %+v", srv.lastReq)
	}
}

func TestGRPCVerifierMapsDetectionFailures(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"no_face_live", verifier.ErrNoFaceInLive},
		{"no_face_reference", verifier.ErrNoFaceInReference},
	}

	for _, tc := range cases {
		srv := &stubProcessorServer{resp: &pb.VerifyFacesResponse{FailureCode: tc.code, Message: "not detected"}}
		conn := startStubProcessor(t, srv)

		v := &grpcVerifier{client: pb.NewFaceProcessorClient(conn), logger: zap.NewNop()}
		_, err := v.Verify(context.Background(), writeTempImage(t, "live.jpg", []byte("live")), writeTempImage(t, "ref.jpg", []byte("ref")))
		if !errors.Is(err, tc.want) {
			t.Fatalf("code %s: expected %v, got %v", tc.code, tc.want, err)
		}
	}
}

func TestGRPCVerifierMissingLiveFile(t *testing.T) {
	v := &grpcVerifier{client: nil, logger: zap.NewNop()}
	_, err := v.Verify(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), writeTempImage(t, "ref.jpg", []byte("ref")))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
