package mpi

import "testing"

func TestSendRecvSelf(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	inbox := make([]float64, 2)
	recvReq, err := w.IRecv(MutSliceOf(inbox), rank, 1)
	if err != nil {
		t.Fatalf("IRecv failed: %v", err)
	}

	payload := []float64{3.25, -1.5}
	if err := w.Send(SliceOf(payload), rank, 1); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	st, err := recvReq.Wait()
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	if inbox[0] != 3.25 || inbox[1] != -1.5 {
		t.Fatalf("unexpected inbox: %v", inbox)
	}
	if st.Source() != rank || st.Tag() != 1 {
		t.Fatalf("unexpected envelope: source %d tag %d", st.Source(), st.Tag())
	}
}

func TestSSendSelf(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	var in int64
	recvReq, err := w.IRecv(MutOf(&in), rank, 2)
	if err != nil {
		t.Fatalf("IRecv failed: %v", err)
	}

	out := int64(-7)
	if err := w.SSend(ValueOf(&out), rank, 2); err != nil {
		t.Fatalf("SSend failed: %v", err)
	}
	if _, err := recvReq.Wait(); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if in != -7 {
		t.Fatalf("received %d, want -7", in)
	}
}

func TestRecvAnySourceAnyTag(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	out := uint32(0xDEAD)
	sendReq, err := w.ISend(ValueOf(&out), rank, 33)
	if err != nil {
		t.Fatalf("ISend failed: %v", err)
	}

	var in uint32
	st, err := w.Recv(MutOf(&in), AnySource, AnyTag)
	if err != nil {
		t.Fatalf("Recv failed: %v", err)
	}
	if _, err := sendReq.Wait(); err != nil {
		t.Fatalf("send wait failed: %v", err)
	}

	if in != 0xDEAD {
		t.Fatalf("received %#x, want 0xDEAD", in)
	}
	if st.Source() != rank || st.Tag() != 33 {
		t.Fatalf("wildcard envelope not filled in: source %d tag %d", st.Source(), st.Tag())
	}
}

func TestProbe(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	payload := []int16{1, 2, 3, 4, 5}
	sendReq, err := w.ISend(SliceOf(payload), rank, 44)
	if err != nil {
		t.Fatalf("ISend failed: %v", err)
	}

	st, err := w.Probe(rank, 44)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	n, exact, err := st.Count(DatatypeOf[int16]())
	if err != nil || !exact || n != 5 {
		t.Fatalf("probed Count = (%d, %v, %v), want (5, true, nil)", n, exact, err)
	}

	inbox := make([]int16, n)
	if _, err := w.Recv(MutSliceOf(inbox), st.Source(), st.Tag()); err != nil {
		t.Fatalf("Recv failed: %v", err)
	}
	if _, err := sendReq.Wait(); err != nil {
		t.Fatalf("send wait failed: %v", err)
	}
	if inbox[4] != 5 {
		t.Fatalf("unexpected inbox: %v", inbox)
	}
}

func TestIProbeNoMessage(t *testing.T) {
	w := world(t)

	_, ok, err := w.IProbe(AnySource, 4567)
	if err != nil {
		t.Fatalf("IProbe failed: %v", err)
	}
	if ok {
		t.Fatal("IProbe reported a message on an idle tag")
	}
}

func TestRecvTruncation(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	payload := []int32{1, 2, 3}
	sendReq, err := w.ISend(SliceOf(payload), rank, 55)
	if err != nil {
		t.Fatalf("ISend failed: %v", err)
	}

	inbox := make([]int32, 1)
	_, err = w.Recv(MutSliceOf(inbox), rank, 55)
	if err == nil {
		t.Fatal("receiving 3 elements into a 1-element buffer did not fail")
	}
	if kind := KindOf(err); kind != KindTruncated {
		t.Fatalf("error kind %v, want %v", kind, KindTruncated)
	}
	if _, err := sendReq.Wait(); err != nil {
		t.Fatalf("send wait failed: %v", err)
	}
}

func TestInvalidRankClassification(t *testing.T) {
	w := world(t)

	v := int32(0)
	err := w.Send(ValueOf(&v), w.Size()+10, 1)
	if err == nil {
		t.Fatal("send to a rank outside the communicator did not fail")
	}
	if kind := KindOf(err); kind != KindInvalidRank {
		t.Fatalf("error kind %v, want %v", kind, KindInvalidRank)
	}
}

func TestSendToProcNull(t *testing.T) {
	w := world(t)

	// Messages to the null process complete immediately and carry nothing.
	v := int32(1)
	if err := w.Send(ValueOf(&v), ProcNull, 1); err != nil {
		t.Fatalf("Send to ProcNull failed: %v", err)
	}
}

func TestStructRoundTrip(t *testing.T) {
	w := world(t)
	rank := w.Rank()

	out := sensorReading{Valid: True(), Value: 98.6, Channel: 12}
	var in sensorReading

	recvReq, err := w.IRecv(MutOf(&in), rank, 66)
	if err != nil {
		t.Fatalf("IRecv failed: %v", err)
	}
	if err := w.Send(ValueOf(&out), rank, 66); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := recvReq.Wait(); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	if !in.Valid.Equal(True()) || in.Value != 98.6 || in.Channel != 12 {
		t.Fatalf("struct did not survive the round trip: %+v", in)
	}
}
