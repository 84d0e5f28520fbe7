package grpcclient

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ICTPass2002kgao/Tact-api-prod/internal/logging"
	"github.com/ICTPass2002kgao/Tact-api-prod/internal/verifier"
	pb "github.com/ICTPass2002kgao/Tact-api-prod/proto"
)

// DialFaceProcessor returns a verifier backed by the face processor sidecar.
// The caller owns the returned connection.
func DialFaceProcessor(ctx context.Context, addr string, logger *zap.Logger) (verifier.Verifier, *grpc.ClientConn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_face_processor", "", err)
		logger.Error("failed to dial face processor", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	client := pb.NewFaceProcessorClient(conn)
	return &grpcVerifier{client: client, logger: logger.Named("verifier_grpc")}, conn, nil
}

type grpcVerifier struct {
	client pb.FaceProcessorClient
	logger *zap.Logger
}

func (g *grpcVerifier) Name() string { return "grpc" }

func (g *grpcVerifier) Verify(ctx context.Context, livePath, referencePath string) (*verifier.Result, error) {
	liveBytes, err := os.ReadFile(livePath)
	if err != nil {
		return nil, logging.NewOperationError("grpcclient.read_live_image", "", err)
	}
	refBytes, err := os.ReadFile(referencePath)
	if err != nil {
		return nil, logging.NewOperationError("grpcclient.read_reference_image", "", err)
	}

	resp, err := g.client.VerifyFaces(ctx, &pb.VerifyFacesRequest{
		LiveImage:      liveBytes,
		ReferenceImage: refBytes,
	})
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.verify_faces", "", err)
		g.logger.Error("face processor call failed", zap.Error(wrapped))
		return nil, wrapped
	}

	switch resp.GetFailureCode() {
	case "":
	case "no_face_live":
		return nil, verifier.ErrNoFaceInLive
	case "no_face_reference":
		return nil, verifier.ErrNoFaceInReference
	default:
		g.logger.Error("face processor reported failure",
			zap.String("failure_code", resp.GetFailureCode()),
			zap.String("message", resp.GetMessage()),
		)
		return nil, logging.NewOperationError("grpcclient.verify_faces", "",
			&processorError{code: resp.GetFailureCode(), message: resp.GetMessage()})
	}

	return &verifier.Result{
		Matched:   resp.GetMatched(),
		Distance:  resp.GetDistance(),
		Threshold: resp.GetThreshold(),
	}, nil
}

type processorError struct {
	code    string
	message string
}

func (e *processorError) Error() string {
	return "face processor failure " + e.code + ": " + e.message
}
