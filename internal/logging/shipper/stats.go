package shipper

import (
	"sync"
	"time"
)

// Stats tracks shipper activity for the status API.
type Stats struct {
	RecordsAccepted int
	RecordsShipped  int
	RecordsDropped  int
	BatchesSent     int
	BatchesDropped  int
	LastSendTime    time.Time
	mu              sync.RWMutex
}

func (st *Stats) IncRecordsAccepted() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.RecordsAccepted++
}

func (st *Stats) AddBatchSent(records int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.BatchesSent++
	st.RecordsShipped += records
	st.LastSendTime = time.Now()
}

func (st *Stats) AddBatchDropped(records int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.BatchesDropped++
	st.RecordsDropped += records
}

func (st *Stats) Snapshot() Stats {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return Stats{
		RecordsAccepted: st.RecordsAccepted,
		RecordsShipped:  st.RecordsShipped,
		RecordsDropped:  st.RecordsDropped,
		BatchesSent:     st.BatchesSent,
		BatchesDropped:  st.BatchesDropped,
		LastSendTime:    st.LastSendTime,
	}
}
