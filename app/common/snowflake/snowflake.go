package snowflake

import (
	"hash/fnv"
	"os"
	"sync"

	bwsnowflake "github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *bwsnowflake.Node
)

// SetNodeID pins the generator to node id (0-1023). Call once at bootstrap,
// before the first Next.
func SetNodeID(id int64) error {
	n, err := bwsnowflake.NewNode(id & 0x3FF)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// hostNodeID derives a 10 bit node id from the hostname.
func hostNodeID() int64 {
	host, _ := os.Hostname()
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	return int64(h.Sum32()) & 0x3FF
}

func current() *bwsnowflake.Node {
	mu.Lock()
	defer mu.Unlock()
	if node != nil {
		return node
	}
	n, err := bwsnowflake.NewNode(hostNodeID())
	if err != nil {
		n, _ = bwsnowflake.NewNode(1)
	}
	node = n
	return node
}

// Next returns a new order id.
func Next() int64 {
	return current().Generate().Int64()
}

// NextString is Next in base 10, used where ids travel as strings (message ids, tokens).
func NextString() string {
	return current().Generate().String()
}
