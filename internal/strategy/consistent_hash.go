package strategy

import (
	"hash/crc32"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/angeloszaimis/origin-proxy/internal/upstream"
)

const defaultVirtualNodes = 100

type consistentHashStrategy struct {
	virtualNodes int
	ring         atomic.Pointer[ring]
	mutex        sync.Mutex
}

type ring struct {
	members   string
	positions []uint32
	owners    map[uint32]*upstream.Host
}

func NewConsistentHashStrategy(virtualNodes int) Strategy {
	if virtualNodes <= 0 {
		virtualNodes = defaultVirtualNodes
	}

	return &consistentHashStrategy{virtualNodes: virtualNodes}
}

// Select maps the key onto the ring. The ring is rebuilt whenever the
// candidate set differs from the one it was built for.
func (s *consistentHashStrategy) Select(hosts []*upstream.Host, key string) *upstream.Host {
	if len(hosts) == 0 {
		return nil
	}

	members := membership(hosts)

	r := s.ring.Load()
	if r == nil || r.members != members {
		s.mutex.Lock()
		r = s.ring.Load()
		if r == nil || r.members != members {
			r = buildRing(hosts, members, s.virtualNodes)
			s.ring.Store(r)
		}
		s.mutex.Unlock()
	}

	return r.lookup(crc32.ChecksumIEEE([]byte(key)))
}

func membership(hosts []*upstream.Host) string {
	urls := make([]string, len(hosts))
	for i, h := range hosts {
		urls[i] = h.String()
	}
	sort.Strings(urls)
	return strings.Join(urls, ",")
}

func buildRing(hosts []*upstream.Host, members string, vnodes int) *ring {
	r := &ring{
		members:   members,
		positions: make([]uint32, 0, len(hosts)*vnodes),
		owners:    make(map[uint32]*upstream.Host, len(hosts)*vnodes),
	}

	for _, h := range hosts {
		for i := 0; i < vnodes; i++ {
			hash := crc32.ChecksumIEEE([]byte(h.String() + "#" + strconv.Itoa(i)))
			r.positions = append(r.positions, hash)
			r.owners[hash] = h
		}
	}

	sort.Slice(r.positions, func(i, j int) bool { return r.positions[i] < r.positions[j] })
	return r
}

func (r *ring) lookup(hash uint32) *upstream.Host {
	if len(r.positions) == 0 {
		return nil
	}

	idx := sort.Search(len(r.positions), func(i int) bool {
		return r.positions[i] >= hash
	})
	if idx == len(r.positions) {
		idx = 0
	}

	return r.owners[r.positions[idx]]
}
