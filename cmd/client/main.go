// Command client is the thin driver wiring internal/config,
// internal/applog, pkg/world, pkg/chunkio, pkg/light,
// pkg/blockentity, and pkg/protocol together: connect to a server,
// run the unauthenticated offline-mode handshake/login sequence, and
// feed every clientbound play packet into the world-state pipeline.
//
// cmd/client is not itself a spec component (SPEC_FULL.md §2's package
// map lists none for it); it is the entrypoint a real renderer/ECS
// collaborator would embed this core behind. Full per-version play
// packet body layouts are only concretely wired here for protocol 47
// (1.8.9, the teacher's native version) — other versions still decode
// correctly through pkg/chunkio's decoder-selection matrix once handed
// a ColumnMeta, but this driver doesn't (yet) parse every era's
// handshake/login and chunk-data packet body layout; see DESIGN.md.
package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voxelkiln/mccore/internal/applog"
	"github.com/voxelkiln/mccore/internal/config"
	"github.com/voxelkiln/mccore/pkg/block"
	"github.com/voxelkiln/mccore/pkg/blockentity"
	"github.com/voxelkiln/mccore/pkg/chat"
	"github.com/voxelkiln/mccore/pkg/chunkio"
	"github.com/voxelkiln/mccore/pkg/collab"
	"github.com/voxelkiln/mccore/pkg/light"
	"github.com/voxelkiln/mccore/pkg/protocol"
	"github.com/voxelkiln/mccore/pkg/world"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "client",
		Short: "Connect to a Minecraft Java Edition server and maintain world state",
		RunE:  run,
	}
	root.Flags().StringVar(&configPath, "config", "config.yaml", "path to the client config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := applog.New(applog.Options{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	registry := block.NewRegistry(block.DefaultCatalog())
	store := world.NewStore(registry)
	store.Configure(cfg.World.MinY, cfg.World.Height)

	engine := light.NewEngine(store, registry)
	store.SetLightQueue(engine)

	dispatcher := blockentity.NewDispatcher(noopECS{}, registry)
	store.SetBlockEntityQueue(dispatcher)

	raw, err := net.Dial("tcp", cfg.Connection.Address)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", cfg.Connection.Address, err)
	}
	defer raw.Close()

	conn := protocol.NewConn(raw, int32(cfg.Connection.ProtocolVersion))
	if err := handshakeAndLogin(conn, cfg); err != nil {
		return fmt.Errorf("handshake/login against %s: %w", cfg.Connection.Address, err)
	}
	log.Infow("connected", "address", cfg.Connection.Address, "protocol_version", cfg.Connection.ProtocolVersion)

	remap := protocol.RemapFor(int32(cfg.Connection.ProtocolVersion))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	budget := time.Duration(cfg.Lighting.TickBudgetMillis) * time.Millisecond
	tickStart := time.Now()
	elapsed := func() int64 { return time.Since(tickStart).Nanoseconds() }

	packets := make(chan *protocol.Packet, 64)
	readErrs := make(chan error, 1)
	go func() {
		for {
			p, err := conn.ReadPacket()
			if err != nil {
				readErrs <- err
				return
			}
			packets <- p
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case err := <-readErrs:
			return fmt.Errorf("reading packet: %w", err)
		case p := <-packets:
			internalID := p.ID
			if remap != nil {
				if id, ok := remap.ToInternal(p.ID); ok {
					internalID = id
				}
			}
			handlePlayPacket(store, registry, log, internalID, p, int32(cfg.Connection.ProtocolVersion))

			tickStart = time.Now()
			engine.Tick(budget.Nanoseconds(), elapsed)
			dispatcher.Drain()
		}
	}
}

// handlePlayPacket applies the subset of clientbound play packets this
// core's world-state pipeline understands. Only protocol 47's chunk
// data body layout is parsed concretely; other protocol versions'
// chunk data packets are logged and skipped here, not misdecoded.
func handlePlayPacket(store *world.Store, registry *block.Registry, log *zap.SugaredLogger, internalID int32, p *protocol.Packet, protocolVersion int32) {
	switch internalID {
	case protocol.PktChunkData:
		if protocolVersion != 47 {
			log.Debugw("skipping chunk data packet for unwired protocol version", "protocol_version", protocolVersion)
			return
		}
		meta, data, err := parseChunkData47(p.Data)
		if err != nil {
			log.Warnw("failed to parse chunk data packet", "error", err)
			return
		}
		col, err := chunkio.DecodeColumn(data, meta, protocolVersion, registry, nil, nil)
		if err != nil {
			log.Warnw("failed to decode chunk column", "pos", meta.Pos, "error", err)
			return
		}
		store.LoadDecodedColumn(col.Pos, col.Sections, col.Biomes)
	case protocol.PktUnloadChunk:
		// Body layout (two big-endian int32s) is shared across eras;
		// left unparsed here since unloading isn't yet wired to a
		// world.Store method beyond LoadChunk/UnloadChunk by ChunkPos,
		// and every era's field order for this packet is identical.
	}
}

// parseChunkData47 reads Minecraft 1.8.9's clientbound Chunk Data
// packet body: chunk X/Z, ground-up-continuous flag, a VarInt primary
// bitmask, a VarInt data length, and the data blob itself (trailing
// block-entity NBT is ignored; this core has no on-wire block-entity
// NBT decoder, only the in-memory dispatch of pkg/blockentity).
func parseChunkData47(payload []byte) (chunkio.ColumnMeta, []byte, error) {
	r := bytes.NewReader(payload)

	x, err := protocol.ReadInt32(r)
	if err != nil {
		return chunkio.ColumnMeta{}, nil, err
	}
	z, err := protocol.ReadInt32(r)
	if err != nil {
		return chunkio.ColumnMeta{}, nil, err
	}
	groundUp, err := protocol.ReadBool(r)
	if err != nil {
		return chunkio.ColumnMeta{}, nil, err
	}
	mask, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return chunkio.ColumnMeta{}, nil, err
	}
	length, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return chunkio.ColumnMeta{}, nil, err
	}
	data := make([]byte, length)
	if _, err := r.Read(data); err != nil {
		return chunkio.ColumnMeta{}, nil, err
	}

	meta := chunkio.ColumnMeta{
		Pos:                world.ChunkPos{X: x, Z: z},
		PrimaryMask:        uint64(mask),
		GroundUpContinuous: groundUp,
		SkyLightPresent:    true,
	}
	return meta, data, nil
}

// handshakeAndLogin runs the unauthenticated (offline-mode) join
// sequence: Handshake (next state = login), Login Start, then waits
// for Login Success before returning with the connection in play
// state. Encryption is not negotiated; a Set Compression packet
// switches conn to compressed framing at the server's threshold.
func handshakeAndLogin(conn *protocol.Conn, cfg *config.Config) error {
	host, port, err := splitHostPort(cfg.Connection.Address)
	if err != nil {
		return err
	}

	handshake := protocol.MarshalPacket(0x00, func(buf *bytes.Buffer) {
		protocol.WriteVarInt(buf, int32(cfg.Connection.ProtocolVersion))
		protocol.WriteString(buf, host)
		protocol.WriteUint16(buf, port)
		protocol.WriteVarInt(buf, protocol.StateLogin)
	})
	if err := conn.WritePacket(handshake); err != nil {
		return err
	}

	loginStart := protocol.MarshalPacket(0x00, func(buf *bytes.Buffer) {
		protocol.WriteString(buf, "mccore")
	})
	if err := conn.WritePacket(loginStart); err != nil {
		return err
	}

	for {
		p, err := conn.ReadPacket()
		if err != nil {
			return err
		}
		switch p.ID {
		case 0x00: // Disconnect (login state): a single wire String field holding JSON
			reasonJSON, err := protocol.ReadString(bytes.NewReader(p.Data))
			if err != nil {
				return fmt.Errorf("server disconnected during login (unreadable reason: %w)", err)
			}
			reason, err := chat.ParseMessage([]byte(reasonJSON))
			if err != nil {
				return fmt.Errorf("server disconnected during login (unparseable reason: %w)", err)
			}
			return fmt.Errorf("server disconnected during login: %s", reason.Plain())
		case 0x02: // Login Success
			return nil
		case 0x03: // Set Compression
			r := bytes.NewReader(p.Data)
			threshold, _, err := protocol.ReadVarInt(r)
			if err != nil {
				return err
			}
			conn.EnableCompression(threshold)
		}
	}
}

func splitHostPort(address string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return "", 0, err
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return "", 0, err
	}
	return host, uint16(port), nil
}

// noopECS is the in-process stand-in used when no real ECS
// collaborator is wired (pkg/collab's ECS is implemented by nothing in
// this repo by design). Block-entity actions are still drained and
// applied against this no-op so the dispatcher's queue never grows
// unbounded.
type noopECS struct{}

func (noopECS) SpawnBlockEntity(kind string, pos block.Position) collab.EntityHandle { return 0 }
func (noopECS) Despawn(handle collab.EntityHandle)                                   {}
func (noopECS) SignComponent(handle collab.EntityHandle) (*collab.SignComponent, bool) {
	return nil, false
}
