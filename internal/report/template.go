// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import "html/template"

var pageTemplate = template.Must(template.New("stream-report").Parse(pageTemplateHTML))

const pageTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <script src="https://cdn.jsdelivr.net/npm/vega@{{.VegaVersion}}"></script>
  <script src="https://cdn.jsdelivr.net/npm/vega-lite@{{.VegaLiteVersion}}"></script>
  <script src="https://cdn.jsdelivr.net/npm/vega-embed@{{.VegaEmbedVersion}}"></script>
  <script src="https://code.jquery.com/jquery-3.6.0.slim.min.js" integrity="sha256-u7e5khyithlIdTpu22PHhENmPcRdFiHRjhAuHcs05RI=" crossorigin="anonymous"></script>
  <style>
    body { font: 11pt Calibri,"Helvetica Neue",Arial,sans-serif; }
    label { margin-right: 2px; }
    .component-list { padding: 0; margin: 0; }
    .header    { display: inline-block; }
    .component { padding: 0 2px; margin: 0;  display: inline-block; cursor: pointer; }
    .active-component { background-color: #ccc; }
  </style>
<script>
const availableMetrics = {{.AvailableMetrics}};
const embedOpt = {"mode": "vega-lite"};

const meanCharts = {{.Mean}};
const worstCharts = {{.Worst}};
const frameCharts = {{.Frame}};
const frameSizeCharts = {{.FrameSize}};

const qps = {{.QPs}};
const bitrates = {{.Bitrates}};

let component = 'Y';
let selected = qps.length ? qps[0] : bitrates[0];

// Charts may be absent for some metric/component/point, such placeholders are cleared.
function embed(id, spec) {
    const el = document.getElementById(id);
    if (!el) return;
    if (spec) {
        vegaEmbed(el, spec, embedOpt);
    } else {
        $(el).empty();
    }
}

function chartKey(metric) {
    return metric === 'VMAF' ? metric : metric + '_' + component;
}

function renderFrames() {
    for (const metric of availableMetrics) {
        embed('frame_' + metric, frameCharts[chartKey(metric) + '_' + selected]);
    }
    embed('frame_size', frameSizeCharts['frame_size_' + selected]);
}

function render() {
    for (const metric of availableMetrics) {
        embed('mean_' + metric, meanCharts[chartKey(metric)]);
        embed('worst_' + metric, worstCharts[chartKey(metric)]);
    }
    renderFrames();
}

function createDivs() {
    for (const metric of availableMetrics) {
        $('<div></div>').attr('id', 'mean_' + metric).appendTo('div.mean');
        $('<div></div>').attr('id', 'worst_' + metric).appendTo('div.worst');
        $('<div></div>').attr('id', 'frame_' + metric).appendTo('div.frame');
    }
}

function createSelector() {
    if (jQuery.isEmptyObject(frameCharts) && jQuery.isEmptyObject(frameSizeCharts)) return;

    $("<label for='br_and_qps'>Bitrates and QPs</label>").appendTo('div#controls');
    const select = $("<select name='br_and_qps' id='br_and_qps'></select>");
    for (const qp of qps) {
        $('<option></option>').val(qp).text('QP: ' + qp).prop('selected', qp === selected).appendTo(select);
    }
    for (const br of bitrates) {
        $('<option></option>').val(br).text(br).prop('selected', br === selected).appendTo(select);
    }
    select.appendTo('div#controls');
    select.change(function() {
        selected = $('#br_and_qps option:selected').val();
        renderFrames();
    });
}

function attachComponentListeners() {
    $('.component').click(function() {
        const $el = $(this);
        if ($el.hasClass('active-component')) return;
        $('.component-list > .component').removeClass('active-component');
        $el.addClass('active-component');
        component = $el.data('component');
        render();
    });
}

$(function() {
    createDivs();
    createSelector();
    attachComponentListeners();
    render();
});
</script>
</head>
<body>
<ul class='component-list'>
    <li class='header'>Components:</li>
    <li class='component active-component' data-component='Y'>Y</li>
    <li class='component' data-component='U'>U</li>
    <li class='component' data-component='V'>V</li>
    <li class='component' data-component='YUV'>YUV</li>
</ul>
<div class="mean"></div>
<div class="worst"></div>
<div id="controls"></div>
<div class="frame"></div>
<div id="frame_size"></div>
</body>
</html>
`
