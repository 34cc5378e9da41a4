// Package opcua exposes the simulation state as read-only OPC UA variables.
// If the server cannot start it degrades to value storage so the rest of the
// simulator keeps running.
package opcua

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/rs/zerolog/log"

	"github.com/dvoicu/process-simulator/internal/engine"
)

const (
	pkiDir   = "./pki"
	certFile = "./pki/server.crt"
	keyFile  = "./pki/server.key"
)

const (
	namespaceIndex uint16 = 2
	folderName            = "ProcessMonitor"
)

// nodeDef describes one variable node in the monitor namespace.
type nodeDef struct {
	Name        string
	DisplayName string
	Description string
	DataType    ua.NodeID
	Initial     interface{}
}

func monitorNodes() []nodeDef {
	return []nodeDef{
		{"SimulationTime", "Simulation Time", "Elapsed simulation time in seconds", ua.DataTypeIDDouble, 0.0},
		{"Temperature", "Temperature", "Simulated process temperature in degC", ua.DataTypeIDDouble, 0.0},
		{"MotorRunning", "Motor Running", "Motor command, 0=off 1=on", ua.DataTypeIDInt32, int32(0)},
		{"AlarmState", "Alarm State", "0=Normal, 1=Warning, 2=Critical", ua.DataTypeIDInt32, int32(0)},
		{"StatusText", "Status Text", "Status banner text", ua.DataTypeIDString, "IDLE"},
		{"WindowMax", "Window Max", "Maximum over the retained window", ua.DataTypeIDDouble, 0.0},
		{"WindowMin", "Window Min", "Minimum over the retained window", ua.DataTypeIDDouble, 0.0},
		{"WindowMean", "Window Mean", "Mean over the retained window", ua.DataTypeIDDouble, 0.0},
		{"EngineState", "Engine State", "0=Idle, 1=Running, 2=Paused", ua.DataTypeIDInt32, int32(0)},
		{"TicksTotal", "Ticks Total", "Ticks since start or last reset", ua.DataTypeIDInt32, int32(0)},
	}
}

// Server wraps the OPC UA server and manages the monitor node values
type Server struct {
	srv  *server.Server
	port int
	name string
	mu   sync.RWMutex

	nodes  map[string]*server.VariableNode
	values map[string]interface{}
}

// NewServer creates a new OPC UA server for the given port. Values can be
// stored and read back even before Start is called.
func NewServer(port int, name string) *Server {
	s := &Server{
		port:   port,
		name:   name,
		nodes:  make(map[string]*server.VariableNode),
		values: make(map[string]interface{}),
	}
	for _, def := range monitorNodes() {
		s.values[def.Name] = def.Initial
	}
	return s
}

// ensurePKI creates PKI directory and self-signed certificates if they don't exist
func ensurePKI(appName string) error {
	if _, err := os.Stat(certFile); err == nil {
		log.Info().Str("certFile", certFile).Msg("Using existing PKI certificates")
		return nil
	}

	log.Info().Msg("Generating self-signed certificates for OPC UA server")

	if err := os.MkdirAll(pkiDir, 0755); err != nil {
		return fmt.Errorf("failed to create PKI directory: %w", err)
	}

	return createSelfSignedCert(appName, certFile, keyFile)
}

// createSelfSignedCert generates a self-signed certificate for OPC UA server
func createSelfSignedCert(appName, certPath, keyPath string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   appName,
			Organization: []string{"Process Simulator"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour), // 1 year validity
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", appName, "process-simulator"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("0.0.0.0")},
	}

	// OPC UA application URI as SAN
	template.URIs = []*url.URL{
		{Scheme: "urn", Opaque: "process-simulator:monitor"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	certFileHandle, err := os.Create(certPath)
	if err != nil {
		return fmt.Errorf("failed to create cert file: %w", err)
	}
	defer certFileHandle.Close()

	if err := pem.Encode(certFileHandle, &pem.Block{Type: "CERTIFICATE", Bytes: certDER}); err != nil {
		return fmt.Errorf("failed to encode certificate: %w", err)
	}

	keyFileHandle, err := os.Create(keyPath)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	defer keyFileHandle.Close()

	keyDER := x509.MarshalPKCS1PrivateKey(privateKey)
	if err := pem.Encode(keyFileHandle, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: keyDER}); err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	log.Info().
		Str("certPath", certPath).
		Str("keyPath", keyPath).
		Msg("Self-signed certificates generated successfully")

	return nil
}

// Start starts the OPC UA server
func (s *Server) Start(ctx context.Context) error {
	endpoint := fmt.Sprintf("opc.tcp://0.0.0.0:%d", s.port)

	log.Info().
		Int("port", s.port).
		Str("endpoint", endpoint).
		Msg("Starting OPC UA server")

	if err := ensurePKI(s.name); err != nil {
		log.Warn().Err(err).Msg("Failed to create PKI - OPC UA server disabled")
		log.Info().Msg("OPC UA server disabled - running in value storage mode only")
		return nil
	}

	// Try to create the OPC UA server with panic recovery
	var srv *server.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Warn().
					Interface("panic", r).
					Msg("OPC UA server creation panicked - running in value storage mode only")
			}
		}()

		var err error
		srv, err = server.New(
			ua.ApplicationDescription{
				ApplicationURI:  "urn:process-simulator:monitor",
				ProductURI:      "urn:process-simulator",
				ApplicationName: ua.LocalizedText{Text: s.name, Locale: "en"},
				ApplicationType: ua.ApplicationTypeServer,
			},
			certFile,
			keyFile,
			endpoint,
			server.WithAnonymousIdentity(true),
			server.WithSecurityPolicyNone(true),
			server.WithInsecureSkipVerify(),
		)
		if err != nil {
			log.Warn().
				Err(err).
				Msg("OPC UA server creation failed - running in value storage mode only")
			srv = nil
		}
	}()

	if srv == nil {
		log.Info().Msg("OPC UA server disabled - running in value storage mode only")
		return nil
	}

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	if err := s.createNodes(); err != nil {
		log.Error().Err(err).Msg("Failed to create OPC UA nodes")
		return err
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("OPC UA server panic")
			}
		}()
		if err := srv.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("OPC UA server error")
		}
	}()

	log.Info().Msg("OPC UA server started successfully")
	return nil
}

// Stop stops the OPC UA server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.RLock()
	srv := s.srv
	s.mu.RUnlock()

	if srv != nil {
		return srv.Close()
	}
	return nil
}

// Started reports whether the server is serving clients, as opposed to
// running in value storage mode.
func (s *Server) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.srv != nil
}

// createNodes builds the ProcessMonitor folder and its variable nodes. All
// variables are read-only; clients observe the process but cannot drive it.
func (s *Server) createNodes() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nm := s.srv.NamespaceManager()

	folder := server.NewObjectNode(
		s.srv,
		ua.NodeIDString{NamespaceIndex: namespaceIndex, ID: folderName},
		ua.QualifiedName{NamespaceIndex: namespaceIndex, Name: folderName},
		ua.LocalizedText{Text: folderName},
		ua.LocalizedText{Text: "Simulated process monitoring data"},
		nil,
		[]ua.Reference{
			{
				ReferenceTypeID: ua.ReferenceTypeIDOrganizes,
				IsInverse:       true,
				TargetID:        ua.ExpandedNodeID{NodeID: ua.ObjectIDObjectsFolder},
			},
		},
		0,
	)
	nm.AddNode(folder)

	createVar := func(def nodeDef) *server.VariableNode {
		return server.NewVariableNode(
			s.srv,
			ua.NodeIDString{NamespaceIndex: namespaceIndex, ID: folderName + "." + def.Name},
			ua.QualifiedName{NamespaceIndex: namespaceIndex, Name: def.Name},
			ua.LocalizedText{Text: def.DisplayName},
			ua.LocalizedText{Text: def.Description},
			nil,
			[]ua.Reference{
				{
					ReferenceTypeID: ua.ReferenceTypeIDHasComponent,
					IsInverse:       true,
					TargetID:        ua.ExpandedNodeID{NodeID: ua.NodeIDString{NamespaceIndex: namespaceIndex, ID: folderName}},
				},
			},
			ua.NewDataValue(def.Initial, 0, time.Now().UTC(), 0, time.Now().UTC(), 0),
			def.DataType,
			ua.ValueRankScalar,
			[]uint32{},
			ua.AccessLevelsCurrentRead,
			250.0,
			false,
			nil,
		)
	}

	for _, def := range monitorNodes() {
		varNode := createVar(def)
		nm.AddNode(varNode)
		s.nodes[def.Name] = varNode
	}

	log.Info().Int("count", len(s.nodes)).Msg("OPC UA nodes registered in address space")
	return nil
}

// UpdateValues publishes an engine snapshot to the monitor nodes. Before the
// first tick, and after a reset, the sample and window nodes return to their
// initial values.
func (s *Server) UpdateValues(snap engine.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	s.store("SimulationTime", snap.SimulationTime, now)
	s.store("EngineState", int32(snap.State), now)
	s.store("TicksTotal", int32(snap.TicksTotal), now)

	if snap.HasSample {
		s.store("Temperature", snap.LastSample.Analog, now)
		s.store("MotorRunning", int32(snap.LastSample.Digital), now)
		s.store("AlarmState", int32(snap.LastSample.Status), now)
		s.store("StatusText", snap.LastSample.StatusText, now)
	} else {
		s.store("Temperature", 0.0, now)
		s.store("MotorRunning", int32(0), now)
		s.store("AlarmState", int32(0), now)
		s.store("StatusText", "IDLE", now)
	}

	if snap.HasStats {
		s.store("WindowMax", snap.Stats.Max, now)
		s.store("WindowMin", snap.Stats.Min, now)
		s.store("WindowMean", snap.Stats.Mean, now)
	} else {
		s.store("WindowMax", 0.0, now)
		s.store("WindowMin", 0.0, now)
		s.store("WindowMean", 0.0, now)
	}
}

// store updates the fallback value and, when the server is up, the node.
func (s *Server) store(name string, value interface{}, timestamp time.Time) {
	s.values[name] = value
	if node, ok := s.nodes[name]; ok {
		node.SetValue(ua.NewDataValue(value, 0, timestamp, 0, timestamp, 0))
	}
}

// GetValue returns the current value of a monitor node
func (s *Server) GetValue(name string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[name]
	return value, ok
}

// GetAllValues returns all current node values as a map
func (s *Server) GetAllValues() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]interface{}, len(s.values))
	for name, value := range s.values {
		values[name] = value
	}
	return values
}
