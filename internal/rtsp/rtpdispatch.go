package rtsp

import (
	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

// dispatcher turns a reassembled RTP packet group into a MediaPacket and
// hands it to the sink: look up the track and depacketizer by payload
// type, depacketize, normalise the timestamp, deliver.
type dispatcher struct {
	tracks        map[uint8]*Track
	depacketizers map[uint8]Depacketizer
	normaliser    *Normaliser
	sink          Sink
	log           *logrus.Entry
}

func newDispatcher(log *logrus.Entry, sink Sink) *dispatcher {
	return &dispatcher{
		tracks:        make(map[uint8]*Track),
		depacketizers: make(map[uint8]Depacketizer),
		normaliser:    NewNormaliser(),
		sink:          sink,
		log:           log,
	}
}

func (d *dispatcher) registerTrack(track *Track) {
	d.tracks[track.PayloadType] = track
	d.depacketizers[track.PayloadType] = NewDepacketizer(track.Codec)
}

// handlePacketGroup depacketizes one coded frame's worth of RTP packets
// and delivers it to the sink.
func (d *dispatcher) handlePacketGroup(packets []*rtp.Packet) {
	if len(packets) == 0 {
		return
	}

	payloadType := packets[0].PayloadType

	track, ok := d.tracks[payloadType]
	if !ok {
		d.log.WithField("payload_type", payloadType).Warn("dropping packet group: no track registered")
		return
	}

	depacketizer, ok := d.depacketizers[payloadType]
	if !ok {
		d.log.WithField("payload_type", payloadType).Warn("dropping packet group: no depacketizer registered")
		return
	}

	bitstream, err := depacketizer.Depacketize(packets)
	if err != nil {
		d.log.WithError(err).WithField("payload_type", payloadType).Warn("dropping packet group: depacketization failed")
		return
	}
	if bitstream == nil {
		// Partial state, awaiting the next packet group.
		return
	}

	ts := d.normaliser.Normalise(payloadType, packets[0].Timestamp)

	d.sink.SendFrame(&MediaPacket{
		TrackID:         track.PayloadType,
		Bitstream:       bitstream,
		PTS:             ts,
		DTS:             ts,
		BitstreamFormat: track.BitstreamFormat(),
		PacketType:      track.PacketType(),
	})
}
