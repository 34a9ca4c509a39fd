package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const raiseCommand = "raise"

// InstanceGuard holds the single-instance lock.
type InstanceGuard struct {
	listener net.Listener
	address  string

	mu      sync.Mutex
	onRaise func()
}

// AcquireSingleInstance binds a deterministic localhost port derived from appName.
// When another instance holds the port it is asked to raise its window and
// ErrAlreadyRunning is returned. onRaise runs whenever a later launch knocks.
func AcquireSingleInstance(appName string, onRaise func()) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if knockErr := knock(address); knockErr != nil {
			log.Debug().Err(knockErr).Str("address", address).Msg("notify running instance")
		}
		return nil, ErrAlreadyRunning
	}

	guard := &InstanceGuard{listener: listener, address: address, onRaise: onRaise}
	go guard.serve()
	return guard, nil
}

// SetOnRaise replaces the raise handler.
func (guard *InstanceGuard) SetOnRaise(onRaise func()) {
	if guard == nil {
		return
	}
	guard.mu.Lock()
	guard.onRaise = onRaise
	guard.mu.Unlock()
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) serve() {
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		line, _ := bufio.NewReader(conn).ReadString('\n')
		_ = conn.Close()
		if strings.TrimSpace(line) != raiseCommand {
			continue
		}
		guard.mu.Lock()
		onRaise := guard.onRaise
		guard.mu.Unlock()
		if onRaise != nil {
			onRaise()
		}
	}
}

func knock(address string) error {
	conn, err := net.DialTimeout("tcp", address, time.Second)
	if err != nil {
		return fmt.Errorf("dial running instance: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(raiseCommand + "\n")); err != nil {
		return fmt.Errorf("send raise: %w", err)
	}
	return nil
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
