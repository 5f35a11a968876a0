package report

// htmlTemplate is the single-page report. It is self-contained: no
// external assets, scripts, or fonts.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{if .Name}}{{.Name}}{{else}}Load Test{{end}} - Surge Report</title>
<style>
    :root {
        --bg-primary: #0d1117;
        --bg-secondary: #161b22;
        --bg-card: #1c2128;
        --border: #30363d;
        --text-primary: #e6edf3;
        --text-secondary: #8b949e;
        --accent: #58a6ff;
        --good: #3fb950;
        --warn: #d29922;
        --bad: #f85149;
    }
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
        font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
        background: var(--bg-primary);
        color: var(--text-primary);
        line-height: 1.5;
    }
    .container { max-width: 960px; margin: 0 auto; padding: 32px 24px; }
    header { margin-bottom: 32px; border-bottom: 1px solid var(--border); padding-bottom: 16px; }
    header h1 { font-size: 1.6em; }
    .meta { color: var(--text-secondary); font-size: 0.9em; margin-top: 4px; }
    .cards {
        display: grid;
        grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
        gap: 16px;
        margin-bottom: 32px;
    }
    .card {
        background: var(--bg-card);
        border: 1px solid var(--border);
        border-radius: 8px;
        padding: 16px 20px;
    }
    .card-value { font-size: 1.7em; font-weight: 600; }
    .card-label { color: var(--text-secondary); font-size: 0.85em; margin-top: 4px; }
    .good { color: var(--good); }
    .warn { color: var(--warn); }
    .bad { color: var(--bad); }
    section { margin-bottom: 32px; }
    section h2 {
        font-size: 1.1em;
        margin-bottom: 12px;
        color: var(--text-primary);
    }
    table {
        width: 100%;
        border-collapse: collapse;
        background: var(--bg-secondary);
        border: 1px solid var(--border);
        border-radius: 8px;
        overflow: hidden;
        font-size: 0.92em;
    }
    th, td { padding: 8px 14px; text-align: left; }
    th {
        background: var(--bg-card);
        color: var(--text-secondary);
        font-weight: 600;
        font-size: 0.85em;
        text-transform: uppercase;
        letter-spacing: 0.04em;
    }
    tr + tr td { border-top: 1px solid var(--border); }
    td.num, th.num { text-align: right; font-variant-numeric: tabular-nums; }
    .error-key { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 0.9em; }
    footer {
        color: var(--text-secondary);
        font-size: 0.85em;
        border-top: 1px solid var(--border);
        padding-top: 16px;
    }
</style>
</head>
<body>
<div class="container">
    <header>
        <h1>{{if .Name}}{{.Name}}{{else}}Load Test{{end}}</h1>
        <p class="meta">
            {{if .RunID}}Run {{.RunID}} &middot; {{end}}{{.StartTime.Format "2006-01-02 15:04:05 MST"}} &middot; {{formatDuration .Elapsed}}
        </p>
    </header>

    <div class="cards">
        <div class="card">
            <div class="card-value">{{formatNumber .Total}}</div>
            <div class="card-label">Completed</div>
        </div>
        <div class="card">
            <div class="card-value{{if .Total}} {{rateClass .SuccessRate}}{{end}}">{{printf "%.1f%%" .SuccessRate}}</div>
            <div class="card-label">Success Rate</div>
        </div>
        <div class="card">
            <div class="card-value">{{printf "%.1f" .RPS}}</div>
            <div class="card-label">Requests / Second</div>
        </div>
        <div class="card">
            <div class="card-value">{{formatLatency .Latency.P95}}</div>
            <div class="card-label">P95 Latency</div>
        </div>
    </div>

    {{if .Latency.Count}}
    <section>
        <h2>Latency</h2>
        <table>
            <tr>
                <th>Min</th><th>P50</th><th>P90</th><th>P95</th><th>P99</th><th>Max</th><th>Mean</th><th>Std Dev</th>
            </tr>
            <tr>
                <td>{{formatLatency .Latency.Min}}</td>
                <td>{{formatLatency .Latency.P50}}</td>
                <td>{{formatLatency .Latency.P90}}</td>
                <td>{{formatLatency .Latency.P95}}</td>
                <td>{{formatLatency .Latency.P99}}</td>
                <td>{{formatLatency .Latency.Max}}</td>
                <td>{{formatLatency .Latency.Mean}}</td>
                <td>{{formatLatency .Latency.StdDev}}</td>
            </tr>
        </table>
    </section>
    {{end}}

    <section>
        <h2>Outcomes</h2>
        <table>
            <tr><th>Outcome</th><th class="num">Count</th></tr>
            <tr><td class="good">Succeeded</td><td class="num">{{formatNumber .Success}}</td></tr>
            <tr><td class="bad">Failed</td><td class="num">{{formatNumber .Failure}}</td></tr>
            <tr><td class="warn">Timed Out</td><td class="num">{{formatNumber .Timeout}}</td></tr>
            <tr><td class="warn">Throttled</td><td class="num">{{formatNumber .Throttled}}</td></tr>
            <tr><td>Abandoned</td><td class="num">{{formatNumber .Abandoned}}</td></tr>
            {{if .WarmupTotal}}<tr><td>Warmup (excluded)</td><td class="num">{{formatNumber .WarmupTotal}}</td></tr>{{end}}
        </table>
    </section>

    {{if .Statuses}}
    <section>
        <h2>Status Classes</h2>
        <table>
            <tr><th>Status</th><th class="num">Count</th></tr>
            {{range sortedCounts .Statuses}}
            <tr><td>{{.Key}}</td><td class="num">{{formatNumber .Count}}</td></tr>
            {{end}}
        </table>
    </section>
    {{end}}

    {{if .Errors}}
    <section>
        <h2>Errors</h2>
        <table>
            <tr><th>Error</th><th class="num">Count</th></tr>
            {{range sortedCounts .Errors}}
            <tr><td class="error-key">{{.Key}}</td><td class="num bad">{{formatNumber .Count}}</td></tr>
            {{end}}
        </table>
    </section>
    {{end}}

    {{if .PerWorkload}}
    <section>
        <h2>Workloads</h2>
        <table>
            <tr>
                <th>Workload</th><th class="num">Count</th><th class="num">P50</th><th class="num">P95</th><th class="num">P99</th><th class="num">Max</th>
            </tr>
            {{range workloadRows .PerWorkload}}
            <tr>
                <td>{{.Name}}</td>
                <td class="num">{{formatNumber .Stats.Count}}</td>
                <td class="num">{{formatLatency .Stats.P50}}</td>
                <td class="num">{{formatLatency .Stats.P95}}</td>
                <td class="num">{{formatLatency .Stats.P99}}</td>
                <td class="num">{{formatLatency .Stats.Max}}</td>
            </tr>
            {{end}}
        </table>
    </section>
    {{end}}

    {{if .Custom}}
    <section>
        <h2>Custom Metrics</h2>
        <table>
            <tr>
                <th>Metric</th><th class="num">Count</th><th class="num">Min</th><th class="num">Mean</th><th class="num">Max</th><th class="num">Sum</th>
            </tr>
            {{range customRows .Custom}}
            <tr>
                <td>{{.Name}}</td>
                <td class="num">{{formatNumber .Stat.Count}}</td>
                <td class="num">{{formatFloat .Stat.Min}}</td>
                <td class="num">{{formatFloat .Stat.Mean}}</td>
                <td class="num">{{formatFloat .Stat.Max}}</td>
                <td class="num">{{formatFloat .Stat.Sum}}</td>
            </tr>
            {{end}}
        </table>
    </section>
    {{end}}

    {{if .TotalBytes}}
    <section>
        <h2>Transfer</h2>
        <table>
            <tr><th>Data Received</th><td class="num">{{formatBytes .TotalBytes}}</td></tr>
        </table>
    </section>
    {{end}}

    <footer>
        Generated by surge &middot; {{.Timestamp.Format "2006-01-02 15:04:05 MST"}}
    </footer>
</div>
</body>
</html>
`
